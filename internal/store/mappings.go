package store

import (
	"context"
	"database/sql"
	"errors"
)

// Mapping correlates a merchant token with the upstream's own payment
// reference. Rows are append-only: written once per successful process call,
// read when the upstream callback arrives, never updated.
type Mapping struct {
	Token              string
	MerchantPrivateKey string
	UpstreamReference  string
}

type MappingsStore struct {
	db *sql.DB
}

func (s *MappingsStore) Insert(ctx context.Context, m *Mapping) error {
	query := `
		INSERT INTO gateway_id_mapping (token, merchant_private_key, gateway_id)
		VALUES (?, ?, ?)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.ExecContext(ctx, query, m.Token, m.MerchantPrivateKey, m.UpstreamReference)
	return err
}

func (s *MappingsStore) GetByReference(ctx context.Context, reference string) (*Mapping, error) {
	query := `
		SELECT token, merchant_private_key FROM gateway_id_mapping WHERE gateway_id = ?
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	m := Mapping{UpstreamReference: reference}
	err := s.db.QueryRowContext(ctx, query, reference).Scan(&m.Token, &m.MerchantPrivateKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
