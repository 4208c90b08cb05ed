package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ti-assistant/server/internal/repository"
)

// AccountRepo handles account (registered user identity) operations.
// Accounts carry only a stable display name to attach to a JWT subject;
// the in-game player names are a separate, per-game concept.
type AccountRepo struct {
	db *sql.DB
}

// NewAccountRepo creates an AccountRepo.
func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) FindByID(ctx context.Context, id string) (*repository.Account, error) {
	var a repository.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider, provider_id, display_name, created_at FROM account WHERE id = $1`, id,
	).Scan(&a.ID, &a.Provider, &a.ProviderID, &a.DisplayName, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find account by id: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) FindByProviderID(ctx context.Context, provider, providerID string) (*repository.Account, error) {
	var a repository.Account
	err := r.db.QueryRowContext(ctx,
		`SELECT id, provider, provider_id, display_name, created_at FROM account WHERE provider = $1 AND provider_id = $2`,
		provider, providerID,
	).Scan(&a.ID, &a.Provider, &a.ProviderID, &a.DisplayName, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find account by provider: %w", err)
	}
	return &a, nil
}

func (r *AccountRepo) Upsert(ctx context.Context, provider, providerID, displayName string) (*repository.Account, error) {
	var a repository.Account
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO account (provider, provider_id, display_name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider, provider_id)
		 DO UPDATE SET display_name = EXCLUDED.display_name
		 RETURNING id, provider, provider_id, display_name, created_at`,
		provider, providerID, displayName,
	).Scan(&a.ID, &a.Provider, &a.ProviderID, &a.DisplayName, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: upsert account: %w", err)
	}
	return &a, nil
}
