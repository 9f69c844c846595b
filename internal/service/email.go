package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
)

const emailSignature = "\n\nBest regards,\nThe AZoom Car Rental Team"

// mailer delivers one message. The SendGrid client and the log-only
// fallback both implement it.
type mailer interface {
	send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error
}

type sendGridMailer struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func (m *sendGridMailer) send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	recipient := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "Send", "to", toEmail, "subject", subject)
	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
	} else if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", toEmail)
	return err
}

type logMailer struct{}

func (logMailer) send(_ context.Context, toEmail, _, subject, plainText, _ string) error {
	logger.Info("email not sent, no SendGrid key configured", "to", toEmail, "subject", subject, "bytes", len(plainText))
	return nil
}

type emailService struct {
	mailer   mailer
	opsEmail string
	opsName  string
}

// NewEmailService sends through SendGrid when apiKey is set and only logs
// messages otherwise.
func NewEmailService(apiKey, fromEmail, fromName, opsEmail string) EmailService {
	var m mailer = logMailer{}
	if apiKey != "" {
		m = &sendGridMailer{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName}
	}
	return &emailService{mailer: m, opsEmail: opsEmail, opsName: "AZoom Operations"}
}

func toHTML(plain string) string {
	return "<html><body><p>" + strings.ReplaceAll(html.EscapeString(plain), "\n", "<br>") + "</p></body></html>"
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, b *domain.Booking) error {
	subject := fmt.Sprintf("Booking Confirmed: %s (#%s)", b.CarName, b.ID)
	body := fmt.Sprintf("Hello %s,\n\nYour booking is confirmed.\n\nBooking: #%s\nVehicle: %s (%s)\nPickup: %s at %s, %s\nReturn: %s\nDuration: %d day(s)\nTotal: $%s",
		b.CustomerName, b.ID, b.CarName, b.Color, b.PickupDate, b.PickupTime, b.PickupBranch, b.ReturnBranch, b.TotalDays, domain.FormatCents(b.TotalCents))
	if b.DiscountCents > 0 {
		body += fmt.Sprintf(" (you saved $%s)", domain.FormatCents(b.DiscountCents))
	}
	body += emailSignature
	return s.mailer.send(ctx, b.CustomerEmail, b.CustomerName, subject, body, toHTML(body))
}

func (s *emailService) SendDamageBill(ctx context.Context, req *domain.DamageRequest) error {
	subject := fmt.Sprintf("Damage Bill #%s for %s", req.ID, req.CarName)
	body := fmt.Sprintf("Hello %s,\n\nDuring the return inspection of booking #%s we found the following damage:\n\n%s\n\nAmount due: $%s\n\nYou can settle this bill from My Bookings.",
		req.CustomerName, req.BookingID, req.Description, domain.FormatCents(req.ChargeCents))
	body += emailSignature
	return s.mailer.send(ctx, req.CustomerEmail, req.CustomerName, subject, body, toHTML(body))
}

func (s *emailService) SendOverdueReminder(ctx context.Context, rental domain.OverdueRental) error {
	subject := fmt.Sprintf("Overdue Rental: %s", rental.CarName)
	body := fmt.Sprintf("Hello %s,\n\nYour rental of the %s (booking #%s) was due back on %s and is now %d day(s) overdue.\n\nPlease return the vehicle or extend the booking from My Bookings.",
		rental.CustomerName, rental.CarName, rental.BookingID, rental.ExpectedReturn.Format(domain.DateLayout), rental.DaysOverdue)
	body += emailSignature
	return s.mailer.send(ctx, rental.CustomerEmail, rental.CustomerName, subject, body, toHTML(body))
}

func (s *emailService) SendLowStockAlert(ctx context.Context, alerts []domain.LowStockAlert) error {
	if s.opsEmail == "" {
		logger.Warn("low stock alert skipped, no ops address configured", "cars", len(alerts))
		return nil
	}
	var sb strings.Builder
	sb.WriteString("The following vehicles are running low:\n\n")
	for _, a := range alerts {
		fmt.Fprintf(&sb, "- %s: %s\n", a.CarName, a.Label)
	}
	subject := fmt.Sprintf("Low Stock Alert: %d vehicle(s)", len(alerts))
	return s.mailer.send(ctx, s.opsEmail, s.opsName, subject, sb.String(), toHTML(sb.String()))
}

func (s *emailService) SendReport(ctx context.Context, subject, htmlBody string) error {
	if s.opsEmail == "" {
		logger.Warn("report email skipped, no ops address configured", "subject", subject)
		return nil
	}
	return s.mailer.send(ctx, s.opsEmail, s.opsName, subject, "Your report is attached as HTML content.", htmlBody)
}
