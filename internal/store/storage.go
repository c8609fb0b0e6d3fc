package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("resource not found")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Mappings interface {
		Insert(ctx context.Context, m *Mapping) error
		GetByReference(ctx context.Context, reference string) (*Mapping, error)
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Mappings: &MappingsStore{db},
	}
}
