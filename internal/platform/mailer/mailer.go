package mailer

import (
	"fmt"

	"github.com/queendomzy/swiftstay-api/pkg/logger"
)

// Service sends transactional mail. Callers treat failures as non-fatal:
// a booking confirmation that could not be mailed is logged, not rolled
// back.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendBookingConfirmation(toEmail, toName string, bookingID, amount int64) error
}

// bookingConfirmation renders the shared confirmation copy for every impl.
func bookingConfirmation(name string, bookingID, amount int64) (subject, text, html string) {
	subject = "Your SwiftStay booking is confirmed"
	text = fmt.Sprintf("Hi %s, your booking #%d is confirmed. Amount paid: %d.", name, bookingID, amount)
	html = fmt.Sprintf(`<p>Hi %s,</p><p>Your booking <b>#%d</b> is confirmed.</p><p>Amount paid: <b>%d</b>.</p>`, name, bookingID, amount)
	return
}

// Dev prints mail to the log instead of sending; the default in local
// development where no mail provider is configured.
type Dev struct{}

func (Dev) Send(toEmail, toName, subject, text, _ string) (string, error) {
	logger.Info("dev mailer: email suppressed", "to", toEmail, "subject", subject)
	return "dev", nil
}

func (d Dev) SendBookingConfirmation(toEmail, toName string, bookingID, amount int64) error {
	subject, text, html := bookingConfirmation(toName, bookingID, amount)
	_, err := d.Send(toEmail, toName, subject, text, html)
	return err
}
