package email

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "02.01.2006 15:04"

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name string, start, end time.Time) error {
	body := fmt.Sprintf(`Hallo %s,

deine Ladebuchung ist bestätigt.

Von: %s
Bis: %s

Bitte bestätige im Kalender, sobald dein Fahrzeug lädt.

- ChargeSlot`, name, start.Format(dateLayout), end.Format(dateLayout))

	return s.enqueue(ctx, EmailJob{
		Type:    TypeBookingConfirmation,
		To:      to,
		Name:    name,
		Subject: "Buchung bestätigt",
		Body:    body,
	})
}

func (s *Service) SendCancellation(ctx context.Context, to, name string, start, end time.Time) error {
	body := fmt.Sprintf(`Hallo %s,

deine Buchung von %s bis %s wurde storniert.

- ChargeSlot`, name, start.Format(dateLayout), end.Format(dateLayout))

	return s.enqueue(ctx, EmailJob{
		Type:    TypeBookingCancellation,
		To:      to,
		Name:    name,
		Subject: "Buchung storniert",
		Body:    body,
	})
}

func (s *Service) SendBanNotice(ctx context.Context, to, name string, until time.Time) error {
	body := fmt.Sprintf(`Hallo %s,

deine Buchung wurde gemeldet, weil dein Fahrzeug im gebuchten Zeitraum nicht geladen hat.
Bis %s kannst du keine neuen Buchungen anlegen. Bestehende Buchungen bleiben erhalten.

- ChargeSlot`, name, until.Format(dateLayout))

	return s.enqueue(ctx, EmailJob{
		Type:    TypeBanNotice,
		To:      to,
		Name:    name,
		Subject: "Buchungssperre",
		Body:    body,
	})
}

func (s *Service) SendBanLifted(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(`Hallo %s,

die Meldung gegen dich wurde zurückgezogen. Du kannst wieder buchen.

- ChargeSlot`, name)

	return s.enqueue(ctx, EmailJob{
		Type:    TypeBanLifted,
		To:      to,
		Name:    name,
		Subject: "Sperre aufgehoben",
		Body:    body,
	})
}
