package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

func TestConnectToPharmacy_Anonymous(t *testing.T) {
	f := newFixture()
	pharmacyID := uuid.New().String()

	result := f.svc.ConnectToPharmacy(context.Background(), pharmacyID)

	assert.Equal(t, "/login?next=/connect?pharmacy_id="+pharmacyID, result.Redirect)
	f.connections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestConnectToPharmacy_DuplicateIsSuccess(t *testing.T) {
	f := newFixture()
	patient, pharmacy := uuid.New(), uuid.New()
	duplicate := &repository.StoreError{Code: "23505", Message: "duplicate key", Kind: repository.ErrDuplicate}

	f.connections.On("Create", mock.Anything, patient, pharmacy).Return(nil).Once()
	f.connections.On("Create", mock.Anything, patient, pharmacy).Return(duplicate).Once()

	first := f.svc.ConnectToPharmacy(signedIn(patient), pharmacy.String())
	second := f.svc.ConnectToPharmacy(signedIn(patient), pharmacy.String())

	assert.Equal(t, "/patient", first.Redirect)
	assert.Empty(t, first.Error)
	assert.Equal(t, "/patient", second.Redirect)
	assert.Empty(t, second.Error)
	f.connections.AssertExpectations(t)
}

func TestConnectToPharmacy_OtherFailure(t *testing.T) {
	f := newFixture()
	patient := uuid.New()
	f.connections.On("Create", mock.Anything, patient, mock.Anything).Return(errors.New("connection refused"))

	result := f.svc.ConnectToPharmacy(signedIn(patient), uuid.New().String())
	assert.Equal(t, "Failed to connect", result.Error)
	assert.Empty(t, result.Redirect)
}

func TestConnectToPharmacy_BadLink(t *testing.T) {
	f := newFixture()
	result := f.svc.ConnectToPharmacy(signedIn(uuid.New()), "not-a-uuid")
	assert.NotEmpty(t, result.Error)
}
