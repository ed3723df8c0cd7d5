package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
)

// NewEvent builds an event with a fresh UUID identifier.
func NewEvent(
	objectID int64,
	eventType domain.EventType,
	at time.Time,
	detail, outcome string,
	agentID *int64,
) *domain.Event {
	return &domain.Event{
		IdentifierType: domain.IdentifierTypeUUID,
		Identifier:     uuid.NewString(),
		Type:           eventType,
		Timestamp:      at.UTC(),
		Detail:         detail,
		Outcome:        outcome,
		ObjectID:       objectID,
		AgentID:        agentID,
	}
}

// storeErr marks err as a store failure unless it already is one.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

// oracleErr marks err as an oracle failure unless it already is one.
func oracleErr(err error) error {
	if errors.Is(err, domain.ErrOracle) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrOracle, err)
}
