package email

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContactLookup resolves a user id to a mail address and display name.
type ContactLookup interface {
	FindContact(ctx context.Context, userID uuid.UUID) (address, name string, err error)
}

// Notifier sends booking related mails addressed by user id.
type Notifier struct {
	mail     *Service
	contacts ContactLookup
	loc      *time.Location
}

func NewNotifier(mail *Service, contacts ContactLookup, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{mail: mail, contacts: contacts, loc: loc}
}

func (n *Notifier) BookingCreated(ctx context.Context, userID uuid.UUID, start, end time.Time) error {
	to, name, err := n.lookup(ctx, userID)
	if err != nil {
		return err
	}
	return n.mail.SendBookingConfirmation(ctx, to, name, start.In(n.loc), end.In(n.loc))
}

func (n *Notifier) BookingCancelled(ctx context.Context, userID uuid.UUID, start, end time.Time) error {
	to, name, err := n.lookup(ctx, userID)
	if err != nil {
		return err
	}
	return n.mail.SendCancellation(ctx, to, name, start.In(n.loc), end.In(n.loc))
}

func (n *Notifier) BanIssued(ctx context.Context, userID uuid.UUID, until time.Time) error {
	to, name, err := n.lookup(ctx, userID)
	if err != nil {
		return err
	}
	return n.mail.SendBanNotice(ctx, to, name, until.In(n.loc))
}

func (n *Notifier) BanLifted(ctx context.Context, userID uuid.UUID) error {
	to, name, err := n.lookup(ctx, userID)
	if err != nil {
		return err
	}
	return n.mail.SendBanLifted(ctx, to, name)
}

func (n *Notifier) lookup(ctx context.Context, userID uuid.UUID) (string, string, error) {
	to, name, err := n.contacts.FindContact(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("lookup contact %s: %w", userID, err)
	}
	return to, name, nil
}
