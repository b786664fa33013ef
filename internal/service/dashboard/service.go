// Package dashboard assembles the read-only payloads behind each role's
// landing page.
package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/pharmacy-portal/internal/cache"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

var (
	ErrSignInRequired  = errors.New("sign in required")
	ErrProfileMissing  = errors.New("profile not found: your user account exists but has no profile data")
	ErrInvalidLink     = errors.New("invalid pharmacy link")
	ErrPharmacyMissing = errors.New("pharmacy not found")
)

type PharmacyDashboard struct {
	Profile   *model.Profile          `json:"profile"`
	Orders    []*model.OrderView      `json:"orders"`
	Inventory []*model.InventoryItem  `json:"inventory"`
	Bills     []*model.BillView       `json:"bills"`
	Patients  []*model.ProfileSummary `json:"patients"`
}

type PatientDashboard struct {
	Profile       *model.Profile             `json:"profile,omitempty"`
	Bills         []*model.BillView          `json:"bills"`
	Prescriptions []*model.Prescription      `json:"prescriptions"`
	Pharmacies    []*model.ConnectedPharmacy `json:"pharmacies"`
}

type DoctorDashboard struct {
	Profile *model.Profile `json:"profile"`
}

// ConnectPage is the confirmation step of a pharmacy invite link. Redirect is
// set when the visitor should be sent elsewhere instead.
type ConnectPage struct {
	Redirect string         `json:"redirect,omitempty"`
	Pharmacy *model.Profile `json:"pharmacy,omitempty"`
}

type Deps struct {
	Profiles      repository.ProfileRepository
	Connections   repository.ConnectionRepository
	Bills         repository.BillRepository
	Inventory     repository.InventoryRepository
	Orders        repository.OrderRepository
	Prescriptions repository.PrescriptionRepository
	Pages         *cache.PageCache
	Logger        zerolog.Logger
}

type Service struct {
	profiles      repository.ProfileRepository
	connections   repository.ConnectionRepository
	bills         repository.BillRepository
	inventory     repository.InventoryRepository
	orders        repository.OrderRepository
	prescriptions repository.PrescriptionRepository
	pages         *cache.PageCache
	log           zerolog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		profiles:      d.Profiles,
		connections:   d.Connections,
		bills:         d.Bills,
		inventory:     d.Inventory,
		orders:        d.Orders,
		prescriptions: d.Prescriptions,
		pages:         d.Pages,
		log:           d.Logger.With().Str("service", "dashboard").Logger(),
	}
}

// Home returns the dashboard path for the signed-in user's role.
func (s *Service) Home(ctx context.Context) (string, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return "/login", nil
	}

	profile, err := s.profiles.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrProfileMissing
		}
		return "", fmt.Errorf("failed to load profile: %w", err)
	}
	return profile.Role.DashboardPath(), nil
}

func (s *Service) Pharmacy(ctx context.Context) (*PharmacyDashboard, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, ErrSignInRequired
	}
	if cached, ok := s.cached("/pharmacy", user.ID); ok {
		if d, ok := cached.(*PharmacyDashboard); ok {
			return d, nil
		}
	}

	profile, err := s.profile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	d := &PharmacyDashboard{Profile: profile}
	orders, err := s.orders.ListForPharmacy(ctx, user.ID)
	d.Orders = orEmpty(s, "orders", orders, err)
	inventory, err := s.inventory.ListByPharmacy(ctx, user.ID)
	d.Inventory = orEmpty(s, "inventory", inventory, err)
	bills, err := s.bills.ListForPharmacy(ctx, user.ID)
	d.Bills = orEmpty(s, "bills", bills, err)
	patients, err := s.connections.ListPatients(ctx, user.ID)
	d.Patients = orEmpty(s, "patients", patients, err)

	s.store("/pharmacy", user.ID, d)
	return d, nil
}

func (s *Service) Patient(ctx context.Context) (*PatientDashboard, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, ErrSignInRequired
	}
	if cached, ok := s.cached("/patient", user.ID); ok {
		if d, ok := cached.(*PatientDashboard); ok {
			return d, nil
		}
	}

	d := &PatientDashboard{}
	if profile, err := s.profiles.Get(ctx, user.ID); err == nil {
		d.Profile = profile
	}
	bills, err := s.bills.ListForPatient(ctx, user.ID)
	d.Bills = orEmpty(s, "bills", bills, err)
	prescriptions, err := s.prescriptions.ListActiveForPatient(ctx, user.ID)
	d.Prescriptions = orEmpty(s, "prescriptions", prescriptions, err)
	pharmacies, err := s.connections.ListPharmacies(ctx, user.ID)
	d.Pharmacies = orEmpty(s, "pharmacies", pharmacies, err)

	s.store("/patient", user.ID, d)
	return d, nil
}

func (s *Service) Doctor(ctx context.Context) (*DoctorDashboard, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, ErrSignInRequired
	}

	profile, err := s.profile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &DoctorDashboard{Profile: profile}, nil
}

// Connect resolves an invite link for the signed-in patient.
func (s *Service) Connect(ctx context.Context, pharmacyID string) (*ConnectPage, error) {
	if pharmacyID == "" {
		return nil, ErrInvalidLink
	}
	user := auth.UserFromContext(ctx)
	if user == nil {
		return &ConnectPage{Redirect: model.ConnectLoginPath(pharmacyID)}, nil
	}

	pid, err := uuid.Parse(pharmacyID)
	if err != nil {
		return nil, ErrPharmacyMissing
	}
	pharmacy, err := s.profiles.GetWithRole(ctx, pid, model.RolePharmacist)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPharmacyMissing
		}
		return nil, fmt.Errorf("failed to load pharmacy: %w", err)
	}

	if _, err := s.connections.Get(ctx, user.ID, pid); err == nil {
		return &ConnectPage{Redirect: "/patient"}, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn().Err(err).Msg("failed to check existing connection")
	}
	return &ConnectPage{Pharmacy: pharmacy}, nil
}

func (s *Service) profile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	profile, err := s.profiles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileMissing
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

func (s *Service) cached(path string, viewer uuid.UUID) (interface{}, bool) {
	if s.pages == nil {
		return nil, false
	}
	return s.pages.Get(path, viewer.String())
}

func (s *Service) store(path string, viewer uuid.UUID, payload interface{}) {
	if s.pages != nil {
		s.pages.Set(path, viewer.String(), payload)
	}
}

// orEmpty turns a failed list read into an empty list, logging the failure.
func orEmpty[T any](s *Service, section string, items []T, err error) []T {
	if err != nil {
		s.log.Error().Err(err).Str("section", section).Msg("dashboard read failed")
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}
