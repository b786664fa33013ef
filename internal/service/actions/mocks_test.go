package actions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) SignUp(ctx context.Context, email, password string, metadata model.JSONMap) (*model.Session, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockAuth) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	return m.Called(ctx, accessToken, refreshToken).Error(0)
}

func (m *mockAuth) GetUser(ctx context.Context, accessToken, refreshToken string) (*model.User, *model.Session, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	var user *model.User
	if u := args.Get(0); u != nil {
		user = u.(*model.User)
	}
	var session *model.Session
	if s := args.Get(1); s != nil {
		session = s.(*model.Session)
	}
	return user, session, args.Error(2)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, user *model.AuthUser) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUsers) Get(ctx context.Context, id uuid.UUID) (*model.AuthUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthUser), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthUser), args.Error(1)
}

func (m *mockUsers) TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *mockProfiles) GetWithRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.Profile, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *mockProfiles) Upsert(ctx context.Context, profile *model.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

type mockConnections struct{ mock.Mock }

func (m *mockConnections) Create(ctx context.Context, patientID, pharmacyID uuid.UUID) error {
	return m.Called(ctx, patientID, pharmacyID).Error(0)
}

func (m *mockConnections) Get(ctx context.Context, patientID, pharmacyID uuid.UUID) (*model.Connection, error) {
	args := m.Called(ctx, patientID, pharmacyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Connection), args.Error(1)
}

func (m *mockConnections) ListPharmacies(ctx context.Context, patientID uuid.UUID) ([]*model.ConnectedPharmacy, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).([]*model.ConnectedPharmacy), args.Error(1)
}

func (m *mockConnections) ListPatients(ctx context.Context, pharmacyID uuid.UUID) ([]*model.ProfileSummary, error) {
	args := m.Called(ctx, pharmacyID)
	return args.Get(0).([]*model.ProfileSummary), args.Error(1)
}

type mockMessages struct{ mock.Mock }

func (m *mockMessages) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *mockMessages) ListBetween(ctx context.Context, a, b uuid.UUID) ([]*model.Message, error) {
	args := m.Called(ctx, a, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Message), args.Error(1)
}

type mockBills struct{ mock.Mock }

func (m *mockBills) ProcessTransaction(ctx context.Context, pharmacyID uuid.UUID, orderID *uuid.UUID, patientID uuid.UUID, items model.BillItems, total float64) (*model.BillTransactionResult, error) {
	args := m.Called(ctx, pharmacyID, orderID, patientID, items, total)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BillTransactionResult), args.Error(1)
}

func (m *mockBills) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bill), args.Error(1)
}

func (m *mockBills) MarkPaid(ctx context.Context, id, patientID uuid.UUID) (*model.Bill, error) {
	args := m.Called(ctx, id, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Bill), args.Error(1)
}

func (m *mockBills) ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.BillView, error) {
	args := m.Called(ctx, pharmacyID)
	return args.Get(0).([]*model.BillView), args.Error(1)
}

func (m *mockBills) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.BillView, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).([]*model.BillView), args.Error(1)
}

func (m *mockBills) ListUnnotified(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Bill, error) {
	args := m.Called(ctx, createdBefore, limit)
	return args.Get(0).([]*model.Bill), args.Error(1)
}

type mockInventory struct{ mock.Mock }

func (m *mockInventory) Create(ctx context.Context, item *model.InventoryItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockInventory) CreateBatch(ctx context.Context, items []*model.InventoryItem) error {
	return m.Called(ctx, items).Error(0)
}

func (m *mockInventory) Update(ctx context.Context, id, pharmacyID uuid.UUID, update model.InventoryUpdate) error {
	return m.Called(ctx, id, pharmacyID, update).Error(0)
}

func (m *mockInventory) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.InventoryItem, error) {
	args := m.Called(ctx, pharmacyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.InventoryItem), args.Error(1)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) UpdateStatus(ctx context.Context, id, pharmacyID uuid.UUID, status model.OrderStatus) error {
	return m.Called(ctx, id, pharmacyID, status).Error(0)
}

func (m *mockOrders) ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.OrderView, error) {
	args := m.Called(ctx, pharmacyID)
	return args.Get(0).([]*model.OrderView), args.Error(1)
}

type recordingPages struct {
	mu      sync.Mutex
	paths   []string
	layouts []string
}

func (p *recordingPages) Revalidate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, path)
}

func (p *recordingPages) RevalidateLayout(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.layouts = append(p.layouts, path)
}

type fixture struct {
	svc         *Service
	auth        *mockAuth
	users       *mockUsers
	profiles    *mockProfiles
	connections *mockConnections
	messages    *mockMessages
	bills       *mockBills
	inventory   *mockInventory
	orders      *mockOrders
	pages       *recordingPages
}

func newFixture() *fixture {
	f := &fixture{
		auth:        new(mockAuth),
		users:       new(mockUsers),
		profiles:    new(mockProfiles),
		connections: new(mockConnections),
		messages:    new(mockMessages),
		bills:       new(mockBills),
		inventory:   new(mockInventory),
		orders:      new(mockOrders),
		pages:       &recordingPages{},
	}
	f.svc = NewService(Deps{
		Auth:        f.auth,
		Users:       f.users,
		Profiles:    f.profiles,
		Connections: f.connections,
		Messages:    f.messages,
		Bills:       f.bills,
		Inventory:   f.inventory,
		Orders:      f.orders,
		Pages:       f.pages,
		Logger:      zerolog.Nop(),
	})
	return f
}

func signedIn(id uuid.UUID) context.Context {
	return auth.WithUser(context.Background(), &model.User{ID: id, Email: "user@example.com"})
}
