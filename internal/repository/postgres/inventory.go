package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type inventoryRepository struct {
	BaseRepository
}

func NewInventoryRepository(base BaseRepository) repository.InventoryRepository {
	return &inventoryRepository{base}
}

const insertInventory = `
	INSERT INTO inventory (id, pharmacy_id, name, quantity, price, created_at, updated_at)
	VALUES (:id, :pharmacy_id, :name, :quantity, :price, :created_at, :updated_at)
`

func stampInventory(item *model.InventoryItem, now time.Time) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = now
	item.UpdatedAt = now
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	stampInventory(item, time.Now().UTC())
	_, err := r.db.NamedExecContext(ctx, insertInventory, item)
	return mapError(err)
}

// CreateBatch inserts all items in a single multi-row statement.
func (r *inventoryRepository) CreateBatch(ctx context.Context, items []*model.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]model.InventoryItem, 0, len(items))
	for _, item := range items {
		stampInventory(item, now)
		rows = append(rows, *item)
	}

	if _, err := r.db.NamedExecContext(ctx, insertInventory, rows); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *inventoryRepository) Update(ctx context.Context, id, pharmacyID uuid.UUID, update model.InventoryUpdate) error {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}

	if update.Quantity != nil {
		args = append(args, *update.Quantity)
		sets = append(sets, fmt.Sprintf("quantity = $%d", len(args)))
	}
	if update.Price != nil {
		args = append(args, *update.Price)
		sets = append(sets, fmt.Sprintf("price = $%d", len(args)))
	}
	args = append(args, id, pharmacyID)

	query := fmt.Sprintf(`UPDATE inventory SET %s WHERE id = $%d AND pharmacy_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.InventoryItem, error) {
	query := `
		SELECT id, pharmacy_id, name, quantity, price, created_at, updated_at
		FROM inventory
		WHERE pharmacy_id = $1
		ORDER BY name ASC
	`

	var items []*model.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, pharmacyID); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}
