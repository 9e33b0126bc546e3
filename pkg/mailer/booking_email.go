package mailer

import (
	"context"
	"fmt"
	"time"

	"gastrotour/internal/data/entity"

	"go.uber.org/zap"
)

// BookingMailer renders and dispatches booking notifications. Sending is
// best effort: failures are logged and never reach the booking path.
type BookingMailer struct {
	mailer Mailer
	log    *zap.Logger
}

func NewBookingMailer(mailer Mailer, log *zap.Logger) *BookingMailer {
	return &BookingMailer{
		mailer: mailer,
		log:    log.With(zap.String("component", "booking_mailer")),
	}
}

func (m *BookingMailer) SendBookingNotification(ctx context.Context, email, name string, event *entity.Event, status entity.BookingStatus, promoted bool) {
	subject, body := renderBookingEmail(name, event, status, promoted)

	if err := m.mailer.Send(ctx, email, subject, body); err != nil {
		m.log.Error("Failed to send booking notification",
			zap.Error(err),
			zap.String("email", email),
			zap.String("event", event.Name),
			zap.String("status", string(status)),
			zap.Bool("promoted", promoted),
		)
	}
}

func renderBookingEmail(name string, event *entity.Event, status entity.BookingStatus, promoted bool) (subject, body string) {
	date := event.Date.In(time.Local).Format("02.01.2006 15:04")

	var title, message string
	switch {
	case promoted:
		subject = fmt.Sprintf("Platz frei: %s", event.Name)
		title = "Gute Nachrichten!"
		message = "Ein Platz ist frei geworden und du bist von der Warteliste nachgerückt. Dein Platz ist jetzt bestätigt."
	case status == entity.BookingStatusWaitlist:
		subject = fmt.Sprintf("Warteliste: %s", event.Name)
		title = "Du stehst auf der Warteliste"
		message = "Das Event ist leider schon voll. Wir melden uns, sobald ein Platz frei wird."
	default:
		subject = fmt.Sprintf("Buchung bestätigt: %s", event.Name)
		title = "Deine Buchung ist bestätigt"
		message = "Wir freuen uns auf dich!"
	}

	body = fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2>Hallo %s!</h2>
      <h3>%s</h3>
      <p>%s</p>
      <p><strong>%s</strong><br>%s<br>%s</p>
      <p style="margin-top: 40px; font-size: 12px; color: #666;">Münchner Gastrotour</p>
    </div>
  </body>
</html>`, name, title, message, event.Name, date, event.Address)

	return subject, body
}
