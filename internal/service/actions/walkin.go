package actions

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type WalkInInput struct {
	FullName string `json:"full_name" form:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone" form:"phone" validate:"required"`
}

type WalkInResult struct {
	PatientID string `json:"patient_id"`
}

// WalkInCredentials derives the placeholder login of a walk-in patient from
// their phone number.
func WalkInCredentials(phone string) (email, password string) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	last4 := digits
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return digits + "@" + model.WalkInEmailDomain, "Walkin" + last4 + "!"
}

// RegisterWalkInPatient creates a patient account for someone at the counter
// and connects them to the signed-in pharmacy. The pharmacist's own session is
// left untouched.
func (s *Service) RegisterWalkInPatient(ctx context.Context, in WalkInInput) model.ActionResult {
	pharmacist := currentUser(ctx)
	if pharmacist == nil {
		return s.done("register_walk_in", model.Failed(msgNotAuthenticated))
	}
	if r, ok := s.check(&in); !ok {
		return s.done("register_walk_in", r)
	}

	email, password := WalkInCredentials(in.Phone)
	if strings.HasPrefix(email, "@") {
		return s.done("register_walk_in", model.Invalid(map[string][]string{"phone": {"Phone number must contain digits"}}))
	}

	session, err := s.auth.SignUp(ctx, email, password, model.JSONMap{
		model.MetaFullName: in.FullName,
		model.MetaPhone:    in.Phone,
		model.MetaRole:     model.RolePatient.String(),
	})
	if err != nil {
		return s.done("register_walk_in", model.Failed(err.Error()))
	}
	patientID := session.User.ID

	phone := in.Phone
	if err := s.profiles.Upsert(ctx, &model.Profile{
		ID:       patientID,
		Role:     model.RolePatient,
		FullName: in.FullName,
		Phone:    &phone,
	}); err != nil {
		s.sideEffectFailed("register_walk_in", "profile_upsert", err)
	}

	if err := s.connections.Create(ctx, patientID, pharmacist.ID); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return s.done("register_walk_in", model.Failed(err.Error()))
	}

	s.pages.Revalidate("/pharmacy")
	return s.done("register_walk_in", model.Succeeded(WalkInResult{PatientID: patientID.String()}))
}
