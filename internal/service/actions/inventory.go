package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type bulkInventoryInput struct {
	Items []model.NewInventoryItem `json:"items" validate:"required,min=1,dive"`
}

func (s *Service) AddInventoryItem(ctx context.Context, in model.NewInventoryItem) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("add_inventory", model.Failed(msgNotAuthenticated))
	}
	if r, ok := s.check(&in); !ok {
		return s.done("add_inventory", r)
	}

	item := &model.InventoryItem{
		PharmacyID: user.ID,
		Name:       in.Name,
		Quantity:   in.Quantity,
		Price:      in.Price,
	}
	if err := s.inventory.Create(ctx, item); err != nil {
		return s.done("add_inventory", model.Failed(err.Error()))
	}

	s.pages.Revalidate("/pharmacy")
	return s.done("add_inventory", model.Succeeded(item))
}

// BulkAddInventory inserts all rows in one statement; any invalid row rejects
// the whole batch.
func (s *Service) BulkAddInventory(ctx context.Context, items []model.NewInventoryItem) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("bulk_add_inventory", model.Failed(msgNotAuthenticated))
	}
	if r, ok := s.check(&bulkInventoryInput{Items: items}); !ok {
		return s.done("bulk_add_inventory", r)
	}

	rows := make([]*model.InventoryItem, 0, len(items))
	for _, in := range items {
		rows = append(rows, &model.InventoryItem{
			PharmacyID: user.ID,
			Name:       in.Name,
			Quantity:   in.Quantity,
			Price:      in.Price,
		})
	}
	if err := s.inventory.CreateBatch(ctx, rows); err != nil {
		return s.done("bulk_add_inventory", model.Failed(err.Error()))
	}

	s.pages.Revalidate("/pharmacy")
	return s.done("bulk_add_inventory", model.Succeeded(map[string]int{"inserted": len(rows)}))
}

// UpdateInventory sets quantity and/or price. Concurrent edits are last write
// wins.
func (s *Service) UpdateInventory(ctx context.Context, id string, update model.InventoryUpdate) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("update_inventory", model.Failed(msgNotAuthenticated))
	}
	itemID, err := uuid.Parse(id)
	if err != nil {
		return s.done("update_inventory", model.Invalid(map[string][]string{"id": {"Invalid uuid"}}))
	}
	if r, ok := s.check(&update); !ok {
		return s.done("update_inventory", r)
	}

	if err := s.inventory.Update(ctx, itemID, user.ID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.done("update_inventory", model.Failed("Inventory item not found"))
		}
		return s.done("update_inventory", model.Failed(err.Error()))
	}

	s.pages.Revalidate("/pharmacy")
	return s.done("update_inventory", model.Succeeded(nil))
}

// GetInventory lists the signed-in pharmacy's stock by name. Failures read as
// an empty list.
func (s *Service) GetInventory(ctx context.Context) []*model.InventoryItem {
	user := currentUser(ctx)
	if user == nil {
		return []*model.InventoryItem{}
	}

	items, err := s.inventory.ListByPharmacy(ctx, user.ID)
	if err != nil {
		s.log.Error().Err(fmt.Errorf("failed to fetch inventory: %w", err)).Msg("inventory read failed")
		return []*model.InventoryItem{}
	}
	return items
}
