package actions

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
)

type CreateBillInput struct {
	OrderID     string           `json:"order_id" form:"order_id" validate:"omitempty,uuid"`
	PatientID   string           `json:"patient_id" form:"patient_id" validate:"required,uuid"`
	Items       []model.BillItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount float64          `json:"total_amount" form:"total_amount" validate:"gte=0"`
}

// CreateBill runs the bill procedure, then tells the patient. The bill stands
// even if the notification cannot be sent.
func (s *Service) CreateBill(ctx context.Context, in CreateBillInput) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("create_bill", model.Failed(msgNotAuthenticated))
	}
	if r, ok := s.check(&in); !ok {
		return s.done("create_bill", r)
	}

	var orderID *uuid.UUID
	if in.OrderID != "" {
		id := uuid.MustParse(in.OrderID)
		orderID = &id
	}
	patientID := uuid.MustParse(in.PatientID)

	result, err := s.bills.ProcessTransaction(ctx, user.ID, orderID, patientID, model.BillItems(in.Items), in.TotalAmount)
	if err != nil {
		return s.done("create_bill", model.Failed(err.Error()))
	}
	if !result.Success || result.BillID == nil {
		msg := result.Error
		if msg == "" {
			msg = "Transaction failed"
		}
		return s.done("create_bill", model.Failed(msg))
	}

	bill := &model.Bill{
		ID:          *result.BillID,
		PharmacyID:  user.ID,
		PatientID:   patientID,
		OrderID:     orderID,
		Items:       in.Items,
		TotalAmount: in.TotalAmount,
		Status:      model.BillStatusUnpaid,
	}
	if err := s.NotifyBill(ctx, bill); err != nil {
		s.sideEffectFailed("create_bill", "bill_message", err)
	}
	s.sendReceipt(ctx, bill)

	s.pages.Revalidate("/pharmacy")
	s.pages.Revalidate("/patient")
	return s.done("create_bill", model.Succeeded(map[string]string{"bill_id": bill.ID.String()}))
}

// NotifyBill posts the structured bill message from the pharmacy to the
// patient.
func (s *Service) NotifyBill(ctx context.Context, bill *model.Bill) error {
	metadata := model.JSONMap{
		model.MetaBillID:     bill.ID.String(),
		model.MetaAmount:     bill.TotalAmount,
		model.MetaItemsCount: len(bill.Items),
	}
	content := fmt.Sprintf("Generated bill for ₹%.2f", bill.TotalAmount)

	if _, err := s.postMessage(ctx, bill.PharmacyID, bill.PatientID, content, model.MessageTypeBill, metadata); err != nil {
		return fmt.Errorf("failed to send bill message: %w", err)
	}
	return nil
}

func (s *Service) sendReceipt(ctx context.Context, bill *model.Bill) {
	if s.email == nil || s.users == nil {
		return
	}
	patient, err := s.users.Get(ctx, bill.PatientID)
	if err != nil {
		s.sideEffectFailed("create_bill", "receipt_email", err)
		return
	}

	pharmacyName := ""
	if profile, err := s.profiles.Get(ctx, bill.PharmacyID); err == nil {
		pharmacyName = profile.FullName
		if profile.PharmacyName != nil && *profile.PharmacyName != "" {
			pharmacyName = *profile.PharmacyName
		}
	}

	if err := s.email.SendBillReceipt(ctx, patient.Email, bill, pharmacyName); err != nil {
		s.sideEffectFailed("create_bill", "receipt_email", err)
	}
}

// PayBill marks one of the caller's bills paid and tells the pharmacy. A bill
// that is already paid is rejected and no second message is sent.
func (s *Service) PayBill(ctx context.Context, billID string) model.ActionResult {
	user := currentUser(ctx)
	if user == nil {
		return s.done("pay_bill", model.Failed(msgNotAuthenticated))
	}
	id, err := uuid.Parse(billID)
	if err != nil {
		return s.done("pay_bill", model.Invalid(map[string][]string{"bill_id": {"Invalid uuid"}}))
	}

	bill, err := s.bills.MarkPaid(ctx, id, user.ID)
	switch {
	case errors.Is(err, repository.ErrAlreadyPaid):
		return s.done("pay_bill", model.Failed(repository.ErrAlreadyPaid.Error()))
	case errors.Is(err, repository.ErrNotFound):
		return s.done("pay_bill", model.Failed("Bill not found"))
	case err != nil:
		return s.done("pay_bill", model.Failed(err.Error()))
	}

	content := fmt.Sprintf("Paid bill #%s of ₹%s", bill.ID.String()[:8], strconv.FormatFloat(bill.TotalAmount, 'f', -1, 64))
	if _, err := s.postMessage(ctx, user.ID, bill.PharmacyID, content, model.MessageTypeText, nil); err != nil {
		s.sideEffectFailed("pay_bill", "paid_message", err)
	}

	s.pages.Revalidate("/patient")
	s.pages.Revalidate("/pharmacy")
	return s.done("pay_bill", model.Succeeded(bill))
}
