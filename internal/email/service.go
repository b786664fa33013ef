package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

type Service interface {
	// SendBillReceipt mails a receipt for bill to the patient. Walk-in
	// placeholder addresses are skipped.
	SendBillReceipt(ctx context.Context, to string, bill *model.Bill, pharmacyName string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer dialer
	from   string
	log    zerolog.Logger
}

// NewService returns an SMTP-backed service, or a no-op one when no host is
// configured.
func NewService(cfg Config, log zerolog.Logger) Service {
	if cfg.Host == "" {
		return noopService{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log.With().Str("service", "email").Logger(),
	}
}

func (s *smtpService) SendBillReceipt(ctx context.Context, to string, bill *model.Bill, pharmacyName string) error {
	if to == "" || strings.HasSuffix(strings.ToLower(to), "@"+model.WalkInEmailDomain) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your bill from %s", pharmacyName))
	m.SetBody("text/plain", receiptBody(bill, pharmacyName))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send bill receipt: %w", err)
	}
	s.log.Debug().Str("bill_id", bill.ID.String()).Msg("bill receipt sent")
	return nil
}

func receiptBody(bill *model.Bill, pharmacyName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nBill #%s\n\n", pharmacyName, bill.ID.String()[:8])
	for _, item := range bill.Items {
		fmt.Fprintf(&b, "%-30s %4d x ₹%.2f\n", item.Name, item.Quantity, item.Price)
	}
	fmt.Fprintf(&b, "\nTotal: ₹%.2f\n", bill.TotalAmount)
	return b.String()
}

type noopService struct{}

func (noopService) SendBillReceipt(context.Context, string, *model.Bill, string) error {
	return nil
}
