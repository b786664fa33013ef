package actions

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type orderStatusInput struct {
	Status string `form:"status" validate:"required,orderstatus"`
}

// UpdateOrderStatus moves an order to any status; progression is not enforced.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("update_order_status", model.Failed(msgNotAuthenticated))
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return s.done("update_order_status", model.Invalid(map[string][]string{"order_id": {"Invalid uuid"}}))
	}
	if r, ok := s.check(&orderStatusInput{Status: status}); !ok {
		return s.done("update_order_status", r)
	}

	if err := s.orders.UpdateStatus(ctx, id, user.ID, model.OrderStatus(status)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.done("update_order_status", model.Failed("Order not found"))
		}
		return s.done("update_order_status", model.Failed(err.Error()))
	}

	s.pages.Revalidate("/pharmacy")
	return s.done("update_order_status", model.Succeeded(nil))
}
