package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driving"
)

// Ensure ObjectService implements the interface.
var _ driving.ObjectService = (*ObjectService)(nil)

// ObjectService assembles an object's preservation record from explicit
// store reads.
type ObjectService struct {
	store driven.ObjectReader
}

// NewObjectService creates a new object service.
func NewObjectService(store driven.ObjectReader) *ObjectService {
	return &ObjectService{store: store}
}

// Get returns an object with its events, properties and related objects.
func (s *ObjectService) Get(ctx context.Context, objectID int64) (*domain.ObjectRecord, error) {
	obj, err := s.store.GetObject(ctx, objectID)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return s.record(ctx, obj)
}

// GetByLocation is Get keyed by content location.
func (s *ObjectService) GetByLocation(ctx context.Context, location string) (*domain.ObjectRecord, error) {
	obj, err := s.store.GetObjectByLocation(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return s.record(ctx, obj)
}

func (s *ObjectService) record(ctx context.Context, obj *domain.PreservationObject) (*domain.ObjectRecord, error) {
	events, err := s.store.ListEvents(ctx, obj.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	props, err := s.store.ListProperties(ctx, obj.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}

	related, err := s.store.ListRelated(ctx, obj.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("list related objects: %w", err)
	}

	return &domain.ObjectRecord{
		Object:     *obj,
		Events:     events,
		Properties: props,
		Related:    related,
	}, nil
}
