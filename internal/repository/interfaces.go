package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository stores auth credentials. Inserting a user fires the
	// profiles trigger in the store.
	UserRepository interface {
		Create(ctx context.Context, user *model.AuthUser) error
		Get(ctx context.Context, id uuid.UUID) (*model.AuthUser, error)
		GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
		TouchSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	ProfileRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
		GetWithRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.Profile, error)
		Upsert(ctx context.Context, profile *model.Profile) error
	}

	ConnectionRepository interface {
		Create(ctx context.Context, patientID, pharmacyID uuid.UUID) error
		Get(ctx context.Context, patientID, pharmacyID uuid.UUID) (*model.Connection, error)
		ListPharmacies(ctx context.Context, patientID uuid.UUID) ([]*model.ConnectedPharmacy, error)
		ListPatients(ctx context.Context, pharmacyID uuid.UUID) ([]*model.ProfileSummary, error)
	}

	MessageRepository interface {
		Create(ctx context.Context, msg *model.Message) (*model.Message, error)
		ListBetween(ctx context.Context, a, b uuid.UUID) ([]*model.Message, error)
	}

	BillRepository interface {
		// ProcessTransaction invokes the store's atomic bill procedure.
		ProcessTransaction(ctx context.Context, pharmacyID uuid.UUID, orderID *uuid.UUID, patientID uuid.UUID, items model.BillItems, total float64) (*model.BillTransactionResult, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		MarkPaid(ctx context.Context, id, patientID uuid.UUID) (*model.Bill, error)
		ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.BillView, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.BillView, error)
		// ListUnnotified returns bills created before the cutoff that have no
		// bill message referencing them.
		ListUnnotified(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Bill, error)
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.InventoryItem) error
		CreateBatch(ctx context.Context, items []*model.InventoryItem) error
		// Update touches only rows owned by pharmacyID.
		Update(ctx context.Context, id, pharmacyID uuid.UUID, update model.InventoryUpdate) error
		ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.InventoryItem, error)
	}

	OrderRepository interface {
		UpdateStatus(ctx context.Context, id, pharmacyID uuid.UUID, status model.OrderStatus) error
		ListForPharmacy(ctx context.Context, pharmacyID uuid.UUID) ([]*model.OrderView, error)
	}

	PrescriptionRepository interface {
		ListActiveForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
	}

	// TableProber checks that a table exists and is readable.
	TableProber interface {
		Probe(ctx context.Context, table string) error
	}
)
