package port

import (
	"context"

	"github.com/kbreuer/artikelstamm/internal/core/domain"
)

type DatabaseRepository interface {
	// BeginTx opens an explicit transaction for one or more writes
	BeginTx(ctx context.Context) (ArtikelTx, error)

	// FindByID retrieves an article by primary key, nil if absent
	FindByID(ctx context.Context, id int64) (*domain.Artikel, error)

	// FindByNummer retrieves an article by its business key, nil if absent
	FindByNummer(ctx context.Context, nummer string) (*domain.Artikel, error)

	// Search runs a conjunctive filter query ordered by bezeichnung
	Search(ctx context.Context, filter domain.SuchFilter) ([]*domain.Artikel, error)
}

// ArtikelTx is the write surface of a single open transaction. Callers must
// finish with exactly one Commit or Rollback.
type ArtikelTx interface {
	// Insert persists a new row and returns the storage-assigned id
	Insert(ctx context.Context, artikel *domain.Artikel) (int64, error)

	// Update overwrites every persisted field of the row matching artikel.ID
	Update(ctx context.Context, artikel *domain.Artikel) error

	// LockArtikel reads the row under a row lock (SELECT ... FOR UPDATE),
	// serializing concurrent stock adjustments until the transaction ends.
	// Returns domain.ErrArtikelNotFound if the row does not exist.
	LockArtikel(ctx context.Context, id int64) (*domain.Artikel, error)

	// UpdateLagerbestand sets the stock level and modification timestamp
	UpdateLagerbestand(ctx context.Context, id int64, bestand int) error

	Commit() error
	Rollback() error
}
