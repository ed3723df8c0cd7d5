package driving

import (
	"context"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// ObjectService reads the preservation record of ingested objects.
type ObjectService interface {
	// Get returns an object with its events, properties and related objects.
	Get(ctx context.Context, objectID int64) (*domain.ObjectRecord, error)

	// GetByLocation is Get keyed by content location.
	GetByLocation(ctx context.Context, location string) (*domain.ObjectRecord, error)
}
