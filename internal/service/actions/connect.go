package actions

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

// ConnectToPharmacy links the signed-in patient to a pharmacy. Connecting
// twice is not an error: both submissions land on the patient dashboard.
func (s *Service) ConnectToPharmacy(ctx context.Context, pharmacyID string) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("connect", model.RedirectTo(model.ConnectLoginPath(pharmacyID)))
	}

	pid, err := uuid.Parse(pharmacyID)
	if err != nil {
		return s.done("connect", model.Failed("Invalid pharmacy link"))
	}

	if err := s.connections.Create(ctx, user.ID, pid); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.done("connect", model.RedirectTo("/patient"))
		}
		s.log.Error().Err(err).Str("pharmacy_id", pharmacyID).Msg("failed to connect to pharmacy")
		return s.done("connect", model.Failed("Failed to connect"))
	}

	s.pages.Revalidate("/patient")
	s.pages.Revalidate("/pharmacy")
	return s.done("connect", model.RedirectTo("/patient"))
}
