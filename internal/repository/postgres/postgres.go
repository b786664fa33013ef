package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

// Repositories bundles every store-backed repository.
type Repositories struct {
	Users         repository.UserRepository
	Profiles      repository.ProfileRepository
	Connections   repository.ConnectionRepository
	Messages      repository.MessageRepository
	Bills         repository.BillRepository
	Inventory     repository.InventoryRepository
	Orders        repository.OrderRepository
	Prescriptions repository.PrescriptionRepository
	Prober        repository.TableProber
}

func NewRepositories(db *sqlx.DB) *Repositories {
	base := NewBaseRepository(db)
	return &Repositories{
		Users:         NewUserRepository(base),
		Profiles:      NewProfileRepository(base),
		Connections:   NewConnectionRepository(base),
		Messages:      NewMessageRepository(base),
		Bills:         NewBillRepository(base),
		Inventory:     NewInventoryRepository(base),
		Orders:        NewOrderRepository(base),
		Prescriptions: NewPrescriptionRepository(base),
		Prober:        NewTableProber(base),
	}
}
