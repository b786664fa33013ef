package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

func newMockBase(t *testing.T) (BaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBaseRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestConnectionRepository_CreateDuplicate(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewConnectionRepository(base)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO patient_pharmacies")).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "patient_pharmacies_patient_id_pharmacy_id_key"`})

	err := repo.Create(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	var storeErr *repository.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "23505", storeErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewUserRepository(base)

	mock.ExpectQuery(regexp.QuoteMeta("FROM auth_users")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_GetWithRole(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewProfileRepository(base)

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1 AND role = $2")).
		WithArgs(id, "pharmacist").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "full_name", "pharmacy_name", "clinic_name", "phone", "created_at", "updated_at"}).
			AddRow(id.String(), "pharmacist", "Asha", "Care Pharmacy", nil, nil, now, now))

	profile, err := repo.GetWithRole(context.Background(), id, model.RolePharmacist)
	require.NoError(t, err)
	assert.Equal(t, model.RolePharmacist, profile.Role)
	require.NotNil(t, profile.PharmacyName)
	assert.Equal(t, "Care Pharmacy", *profile.PharmacyName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBillRepository_ProcessTransaction(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		success bool
		errText string
	}{
		{
			name:    "created",
			payload: `{"success": true, "bill_id": "6f1c2b0e-8a51-4f4c-9c39-0c1f7d2a6f10"}`,
			success: true,
		},
		{
			name:    "rejected",
			payload: `{"success": false, "error": "insufficient stock"}`,
			errText: "insufficient stock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, mock := newMockBase(t)
			repo := NewBillRepository(base)

			mock.ExpectQuery(regexp.QuoteMeta("SELECT process_bill_transaction($1, $2, $3, $4::jsonb, $5)")).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 10.0).
				WillReturnRows(sqlmock.NewRows([]string{"process_bill_transaction"}).AddRow([]byte(tt.payload)))

			items := model.BillItems{{Name: "Paracetamol", Quantity: 2, Price: 5}}
			result, err := repo.ProcessTransaction(context.Background(), uuid.New(), nil, uuid.New(), items, 10.0)
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.errText, result.Error)
			if tt.success {
				require.NotNil(t, result.BillID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBillRepository_MarkPaid(t *testing.T) {
	billCols := []string{"id", "pharmacy_id", "patient_id", "order_id", "items", "total_amount", "status", "created_at"}

	t.Run("unpaid bill is marked paid", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewBillRepository(base)
		id, patient := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE bills b SET status = 'paid'")).
			WithArgs(id, patient).
			WillReturnRows(sqlmock.NewRows(billCols).
				AddRow(id.String(), uuid.New().String(), patient.String(), nil, []byte(`[{"name":"A","quantity":1,"price":10}]`), 10.0, "paid", time.Now()))

		bill, err := repo.MarkPaid(context.Background(), id, patient)
		require.NoError(t, err)
		assert.Equal(t, model.BillStatusPaid, bill.Status)
		assert.Len(t, bill.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already paid bill is rejected", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewBillRepository(base)
		id, patient := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE bills b SET status = 'paid'")).
			WithArgs(id, patient).
			WillReturnRows(sqlmock.NewRows(billCols))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM bills")).
			WithArgs(id, patient).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paid"))

		_, err := repo.MarkPaid(context.Background(), id, patient)
		assert.ErrorIs(t, err, repository.ErrAlreadyPaid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign bill is not found", func(t *testing.T) {
		base, mock := newMockBase(t)
		repo := NewBillRepository(base)
		id, patient := uuid.New(), uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE bills b SET status = 'paid'")).
			WillReturnRows(sqlmock.NewRows(billCols))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM bills")).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))

		_, err := repo.MarkPaid(context.Background(), id, patient)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInventoryRepository_UpdateBuildsPartialSet(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewInventoryRepository(base)
	id := uuid.New()
	qty := 7

	pharmacy := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE inventory SET updated_at = $1, quantity = $2 WHERE id = $3 AND pharmacy_id = $4")).
		WithArgs(sqlmock.AnyArg(), 7, id, pharmacy).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), id, pharmacy, model.InventoryUpdate{Quantity: &qty}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepository_UpdateMissingRow(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewInventoryRepository(base)
	price := 3.5

	mock.ExpectExec(regexp.QuoteMeta("UPDATE inventory SET updated_at = $1, price = $2 WHERE id = $3 AND pharmacy_id = $4")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), uuid.New(), uuid.New(), model.InventoryUpdate{Price: &price})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMessageRepository_ListBetweenOrdersAscending(t *testing.T) {
	base, mock := newMockBase(t)
	repo := NewMessageRepository(base)
	a, b := uuid.New(), uuid.New()
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC")).
		WithArgs(a, b).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sender_id", "receiver_id", "content", "type", "metadata", "created_at"}).
			AddRow(uuid.New().String(), a.String(), b.String(), "hi", "text", []byte(`{}`), t0).
			AddRow(uuid.New().String(), b.String(), a.String(), "Generated bill for ₹10.00", "bill", []byte(`{"amount":10}`), t0.Add(time.Minute)))

	msgs, err := repo.ListBetween(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, model.MessageTypeBill, msgs[1].Type)
	assert.Equal(t, float64(10), msgs[1].Metadata["amount"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTableProber_MissingTable(t *testing.T) {
	base, mock := newMockBase(t)
	prober := NewTableProber(base)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM "orders" LIMIT 1`)).
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "orders" does not exist`})

	err := prober.Probe(context.Background(), "orders")
	assert.ErrorIs(t, err, repository.ErrUndefinedTable)
	assert.EqualError(t, err, `relation "orders" does not exist`)
}
