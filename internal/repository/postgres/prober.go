package postgres

import (
	"context"

	"github.com/lib/pq"

	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type tableProber struct {
	BaseRepository
}

func NewTableProber(base BaseRepository) repository.TableProber {
	return &tableProber{base}
}

// Probe reads at most one row of table. A missing relation surfaces as an
// error wrapping repository.ErrUndefinedTable.
func (p *tableProber) Probe(ctx context.Context, table string) error {
	rows, err := p.db.QueryContext(ctx, `SELECT 1 FROM `+pq.QuoteIdentifier(table)+` LIMIT 1`)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()
	return mapError(rows.Err())
}
