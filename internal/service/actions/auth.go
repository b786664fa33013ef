package actions

import (
	"context"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type SignupInput struct {
	Email        string `form:"email" validate:"required,email"`
	Password     string `form:"password" validate:"required,min=6"`
	FullName     string `form:"full_name" validate:"required,min=2"`
	Role         string `form:"role" validate:"required,role"`
	ClinicName   string `form:"clinic_name"`
	PharmacyName string `form:"pharmacy_name"`
}

// Login opens a session. The caller installs the returned session cookies.
func (s *Service) Login(ctx context.Context, in LoginInput) (model.ActionResult, *model.Session) {
	if r, ok := s.check(&in); !ok {
		return s.done("login", r), nil
	}

	session, err := s.auth.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return s.done("login", model.Failed(err.Error())), nil
	}

	s.pages.RevalidateLayout("/")
	return s.done("login", model.RedirectTo("/")), session
}

// Signup creates the auth user with the profile fields as metadata; the store
// builds the profile from them.
func (s *Service) Signup(ctx context.Context, in SignupInput) (model.ActionResult, *model.Session) {
	if r, ok := s.check(&in); !ok {
		return s.done("signup", r), nil
	}

	metadata := model.JSONMap{
		model.MetaFullName: in.FullName,
		model.MetaRole:     in.Role,
	}
	if in.ClinicName != "" {
		metadata[model.MetaClinicName] = in.ClinicName
	}
	if in.PharmacyName != "" {
		metadata[model.MetaPharmacyName] = in.PharmacyName
	}

	session, err := s.auth.SignUp(ctx, in.Email, in.Password, metadata)
	if err != nil {
		return s.done("signup", model.Failed(err.Error())), nil
	}

	s.log.Info().Str("user_id", session.User.ID.String()).Str("role", in.Role).Msg("signup completed")
	s.pages.RevalidateLayout("/")
	return s.done("signup", model.RedirectTo("/")), session
}

// Signout revokes the session. The caller clears the session cookies.
func (s *Service) Signout(ctx context.Context, accessToken, refreshToken string) model.ActionResult {
	if err := s.auth.SignOut(ctx, accessToken, refreshToken); err != nil {
		s.log.Warn().Err(err).Msg("sign out failed")
	}
	s.pages.RevalidateLayout("/")
	return s.done("signout", model.RedirectTo("/login"))
}
