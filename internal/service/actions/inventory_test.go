package actions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

func TestParseInventoryCSV(t *testing.T) {
	input := "Name,Quantity,Price\n" +
		"Paracetamol, 100, 2.50\n" +
		"\n" +
		"Cough Syrup,abc,12x\n" +
		" ,5,1\n" +
		"Ibuprofen,20tabs\n"

	items, err := ParseInventoryCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []model.NewInventoryItem{
		{Name: "Paracetamol", Quantity: 100, Price: 2.5},
		{Name: "Cough Syrup", Quantity: 0, Price: 12},
		{Name: "Ibuprofen", Quantity: 20, Price: 0},
	}, items)
}

func TestParseInventoryCSV_NoHeader(t *testing.T) {
	items, err := ParseInventoryCSV(strings.NewReader("Aspirin,10,1.25"))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Aspirin", items[0].Name)
}

func TestBulkAddInventory(t *testing.T) {
	f := newFixture()
	pharmacy := uuid.New()
	f.inventory.On("CreateBatch", mock.Anything, mock.MatchedBy(func(rows []*model.InventoryItem) bool {
		return len(rows) == 2 && rows[0].PharmacyID == pharmacy && rows[1].Name == "B"
	})).Return(nil)

	result := f.svc.BulkAddInventory(signedIn(pharmacy), []model.NewInventoryItem{
		{Name: "A", Quantity: 1, Price: 1},
		{Name: "B", Quantity: 2, Price: 2},
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"/pharmacy"}, f.pages.paths)
}

func TestBulkAddInventory_EmptyIsInvalid(t *testing.T) {
	f := newFixture()
	result := f.svc.BulkAddInventory(signedIn(uuid.New()), nil)
	assert.Equal(t, "invalid", result.Outcome())
}

func TestUpdateInventory(t *testing.T) {
	f := newFixture()
	pharmacy, item := uuid.New(), uuid.New()
	qty := 5
	f.inventory.On("Update", mock.Anything, item, pharmacy, model.InventoryUpdate{Quantity: &qty}).Return(nil)

	result := f.svc.UpdateInventory(signedIn(pharmacy), item.String(), model.InventoryUpdate{Quantity: &qty})
	assert.True(t, result.Success)

	f.inventory.On("Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrNotFound)
	result = f.svc.UpdateInventory(signedIn(pharmacy), uuid.New().String(), model.InventoryUpdate{})
	assert.Equal(t, "Inventory item not found", result.Error)
}

func TestGetInventory_FailuresReadAsEmpty(t *testing.T) {
	f := newFixture()
	assert.Empty(t, f.svc.GetInventory(context.Background()))

	f.inventory.On("ListByPharmacy", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	items := f.svc.GetInventory(signedIn(uuid.New()))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture()
	pharmacy, order := uuid.New(), uuid.New()
	f.orders.On("UpdateStatus", mock.Anything, order, pharmacy, model.OrderStatusReady).Return(nil)

	assert.True(t, f.svc.UpdateOrderStatus(signedIn(pharmacy), order.String(), "ready").Success)

	result := f.svc.UpdateOrderStatus(signedIn(pharmacy), order.String(), "shipped")
	assert.Contains(t, result.FieldErrors, "status")
}

func TestGetMessages_Anonymous(t *testing.T) {
	f := newFixture()
	msgs := f.svc.GetMessages(context.Background(), uuid.New().String())
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
	f.messages.AssertNotCalled(t, "ListBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessage_DefaultsToText(t *testing.T) {
	f := newFixture()
	sender, receiver := uuid.New(), uuid.New()
	f.messages.On("Create", mock.Anything, mock.MatchedBy(func(m *model.Message) bool {
		return m.Type == model.MessageTypeText && m.SenderID == sender && m.Metadata != nil
	})).Return(&model.Message{Content: "hi"}, nil)

	result := f.svc.SendMessage(signedIn(sender), SendMessageInput{ReceiverID: receiver.String(), Content: "hi"})
	assert.True(t, result.Success)
	f.messages.AssertExpectations(t)
}
