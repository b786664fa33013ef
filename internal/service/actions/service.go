// Package actions is the forwarding layer behind every form submission. Each
// action validates its input, makes one platform call and reports the outcome
// as a model.ActionResult. Expected failures never escape as errors.
package actions

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/pharmacy-portal/internal/email"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
	"github.com/jwalitptl/pharmacy-portal/pkg/validator"
)

const msgNotAuthenticated = "Not authenticated"

// Revalidator drops cached pages after their data changed.
type Revalidator interface {
	Revalidate(path string)
	RevalidateLayout(path string)
}

type Deps struct {
	Auth        auth.Service
	Users       repository.UserRepository
	Profiles    repository.ProfileRepository
	Connections repository.ConnectionRepository
	Messages    repository.MessageRepository
	Bills       repository.BillRepository
	Inventory   repository.InventoryRepository
	Orders      repository.OrderRepository
	Email       email.Service
	Pages       Revalidator
	Validator   validator.Validator
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

type Service struct {
	auth        auth.Service
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	connections repository.ConnectionRepository
	messages    repository.MessageRepository
	bills       repository.BillRepository
	inventory   repository.InventoryRepository
	orders      repository.OrderRepository
	email       email.Service
	pages       Revalidator
	validate    validator.Validator
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewService(d Deps) *Service {
	v := d.Validator
	if v == nil {
		v = validator.New()
	}
	return &Service{
		auth:        d.Auth,
		users:       d.Users,
		profiles:    d.Profiles,
		connections: d.Connections,
		messages:    d.Messages,
		bills:       d.Bills,
		inventory:   d.Inventory,
		orders:      d.Orders,
		email:       d.Email,
		pages:       d.Pages,
		validate:    v,
		metrics:     d.Metrics,
		log:         d.Logger.With().Str("service", "actions").Logger(),
	}
}

// check validates in and returns the field-error result when it fails.
func (s *Service) check(in interface{}) (model.ActionResult, bool) {
	err := s.validate.Validate(in)
	if err == nil {
		return model.ActionResult{}, true
	}
	if fields := s.validate.FieldErrors(err); fields != nil {
		return model.Invalid(fields), false
	}
	return model.Failed(err.Error()), false
}

func (s *Service) done(action string, r model.ActionResult) model.ActionResult {
	if s.metrics != nil {
		s.metrics.ActionOutcomes.WithLabelValues(action, r.Outcome()).Inc()
	}
	if r.Error != "" {
		s.log.Warn().Str("action", action).Str("outcome", r.Outcome()).Msg(r.Error)
	}
	return r
}

// sideEffectFailed records a best-effort follow-up that did not happen.
func (s *Service) sideEffectFailed(action, effect string, err error) {
	if s.metrics != nil {
		s.metrics.SideEffectFailures.WithLabelValues(action, effect).Inc()
	}
	s.log.Error().Err(err).Str("action", action).Str("effect", effect).Msg("side effect failed")
}

func currentUser(ctx context.Context) *model.User {
	return auth.UserFromContext(ctx)
}
