package usecase

import (
	"context"
	"fmt"

	"github.com/hseto/minute/internal/domain"
)

// InitStoreOutput contains the result of initializing a store.
type InitStoreOutput struct{}

// InitStore is the use case for preparing a task store for first use.
// Initialization is idempotent; re-running it repairs the ID counter if it
// has fallen behind existing records but never rewrites task data.
type InitStore struct {
	init   domain.StoreInitializer
	logger domain.Logger
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(init domain.StoreInitializer, logger domain.Logger) *InitStore {
	return &InitStore{init: init, logger: logger}
}

// Execute initializes the store.
func (uc *InitStore) Execute(_ context.Context) (*InitStoreOutput, error) {
	if err := uc.init.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	if uc.logger != nil {
		uc.logger.Info("", "init", "store initialized")
	}
	return &InitStoreOutput{}, nil
}
