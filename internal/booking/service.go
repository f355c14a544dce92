package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chargeslot/internal/logger"
	"chargeslot/internal/metrics"
	"chargeslot/internal/slot"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const MaxCalendarDays = 7

const (
	EventCreated           = "booking.created"
	EventCancelled         = "booking.cancelled"
	EventReported          = "booking.reported"
	EventReportUndone      = "booking.report_undone"
	EventChargingConfirmed = "booking.charging_confirmed"
)

var ErrInvalidRange = errors.New("days must be between 1 and 7")

var tracer = otel.Tracer("chargeslot/booking")

// BanGate reads and writes a user's booking suspension.
type BanGate interface {
	GetBannedUntil(ctx context.Context, userID uuid.UUID) (*time.Time, error)
	SetBannedUntil(ctx context.Context, userID uuid.UUID, until *time.Time) error
}

type Notifier interface {
	BookingCreated(ctx context.Context, userID uuid.UUID, start, end time.Time) error
	BookingCancelled(ctx context.Context, userID uuid.UUID, start, end time.Time) error
	BanIssued(ctx context.Context, userID uuid.UUID, until time.Time) error
	BanLifted(ctx context.Context, userID uuid.UUID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Event is the payload published for every booking state change.
type Event struct {
	BookingID      uuid.UUID      `json:"booking_id"`
	OwnerID        uuid.UUID      `json:"owner_id"`
	ActorID        uuid.UUID      `json:"actor_id"`
	StartTime      time.Time      `json:"start_time"`
	EndTime        time.Time      `json:"end_time"`
	Status         Status         `json:"status"`
	ChargingStatus ChargingStatus `json:"charging_status"`
	BannedUntil    *time.Time     `json:"banned_until,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

type Service interface {
	Slots() []slot.TimeSlot
	BookSlot(ctx context.Context, requester uuid.UUID, date time.Time, slotID int, notes string) (*Booking, error)
	CancelBooking(ctx context.Context, requester uuid.UUID, isAdmin bool, id uuid.UUID) (*Booking, error)
	ReportAbuse(ctx context.Context, reporter uuid.UUID, id uuid.UUID) (*Booking, error)
	UndoReport(ctx context.Context, requester uuid.UUID, id uuid.UUID) (*Booking, error)
	ConfirmCharging(ctx context.Context, requester uuid.UUID, id uuid.UUID) (*Booking, error)
	Calendar(ctx context.Context, viewer uuid.UUID, isAdmin bool, from time.Time, days int) ([]CalendarDay, error)
	MyBookings(ctx context.Context, userID uuid.UUID) (*MyBookings, error)
}

type Options struct {
	BanDuration time.Duration
	Now         func() time.Time
}

type service struct {
	engine      *Engine
	repo        Repository
	bans        BanGate
	notifier    Notifier
	events      EventPublisher
	banDuration time.Duration
	now         func() time.Time
}

func NewService(engine *Engine, repo Repository, bans BanGate, notifier Notifier, events EventPublisher, opts Options) Service {
	if opts.BanDuration <= 0 {
		opts.BanDuration = 7 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		engine:      engine,
		repo:        repo,
		bans:        bans,
		notifier:    notifier,
		events:      events,
		banDuration: opts.BanDuration,
		now:         opts.Now,
	}
}

func (s *service) Slots() []slot.TimeSlot {
	return s.engine.Catalog().SlotsForDay()
}

func (s *service) BookSlot(ctx context.Context, requester uuid.UUID, date time.Time, slotID int, notes string) (b *Booking, err error) {
	ctx, span := tracer.Start(ctx, "booking.BookSlot")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("user.id", requester.String()), attribute.Int("slot.id", slotID))

	ts, err := s.engine.Catalog().ByID(slotID)
	if err != nil {
		return nil, err
	}

	bannedUntil, err := s.bans.GetBannedUntil(ctx, requester)
	if err != nil {
		metrics.RecordBookingRequest("error")
		return nil, unexpected(fmt.Errorf("ban lookup: %w", err))
	}

	window := s.engine.Catalog().Window(date, ts)
	snapshot, err := s.repo.ListInRange(ctx, window.Start, window.End)
	if err != nil {
		metrics.RecordBookingRequest("error")
		return nil, unexpected(fmt.Errorf("load snapshot: %w", err))
	}

	candidate, err := s.engine.RequestBooking(plainBookings(snapshot), requester, bannedUntil, date, ts, notes, s.now())
	if err != nil {
		metrics.RecordBookingRequest(outcomeLabel(err))
		return nil, err
	}
	candidate.ID = uuid.New()

	created, err := s.repo.Insert(ctx, &candidate)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.RecordBookingRequest("conflict")
			logger.Info("Booking conflict at insert", "slot_id", slotID, "start", window.Start)
			return nil, ErrConflict
		}
		metrics.RecordBookingRequest("error")
		return nil, unexpected(fmt.Errorf("insert booking: %w", err))
	}

	metrics.RecordBookingRequest("created")
	logger.Info("Booking created", "booking_id", created.ID, "user_id", requester, "start", created.StartTime)

	s.notify(ctx, "booking confirmation", func(ctx context.Context) error {
		return s.notifier.BookingCreated(ctx, created.UserID, created.StartTime, created.EndTime)
	})
	s.publish(ctx, EventCreated, *created, requester, nil)

	return created, nil
}

func (s *service) CancelBooking(ctx context.Context, requester uuid.UUID, isAdmin bool, id uuid.UUID) (b *Booking, err error) {
	ctx, span := tracer.Start(ctx, "booking.CancelBooking")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("booking.id", id.String()), attribute.Bool("admin", isAdmin))

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.engine.CancelBooking(*current, requester, isAdmin)
	if err != nil {
		return nil, err
	}
	if !t.Changed {
		return &t.Booking, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, current.Status, t.Booking.Status); err != nil {
		return nil, storeError(err)
	}

	by := "owner"
	if current.UserID != requester {
		by = "admin"
	}
	metrics.RecordBookingCancellation(by)
	logger.Info("Booking cancelled", "booking_id", id, "by", requester)

	s.notify(ctx, "cancellation", func(ctx context.Context) error {
		return s.notifier.BookingCancelled(ctx, t.Booking.UserID, t.Booking.StartTime, t.Booking.EndTime)
	})
	s.publish(ctx, EventCancelled, t.Booking, requester, nil)

	return &t.Booking, nil
}

func (s *service) ReportAbuse(ctx context.Context, reporter uuid.UUID, id uuid.UUID) (b *Booking, err error) {
	ctx, span := tracer.Start(ctx, "booking.ReportAbuse")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("booking.id", id.String()))

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.engine.ReportAbuse(*current, reporter, s.now(), s.banDuration)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkNotCharging(ctx, id, reporter, current.ChargingStatus); err != nil {
		return nil, storeError(err)
	}
	metrics.RecordChargingTransition(string(t.Booking.ChargingStatus))

	if err := s.applyBan(ctx, t.Ban); err != nil {
		return nil, err
	}

	logger.Info("Booking reported", "booking_id", id, "reporter", reporter, "owner", t.Booking.UserID)
	s.notify(ctx, "ban notice", func(ctx context.Context) error {
		return s.notifier.BanIssued(ctx, t.Ban.UserID, *t.Ban.Until)
	})
	s.publish(ctx, EventReported, t.Booking, reporter, t.Ban.Until)

	return &t.Booking, nil
}

func (s *service) UndoReport(ctx context.Context, requester uuid.UUID, id uuid.UUID) (b *Booking, err error) {
	ctx, span := tracer.Start(ctx, "booking.UndoReport")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("booking.id", id.String()))

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.engine.UndoReport(*current, requester)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearReport(ctx, id, requester); err != nil {
		return nil, storeError(err)
	}
	metrics.RecordChargingTransition(string(t.Booking.ChargingStatus))

	if err := s.applyBan(ctx, t.Ban); err != nil {
		return nil, err
	}

	logger.Info("Report withdrawn", "booking_id", id, "reporter", requester)
	s.notify(ctx, "ban lifted", func(ctx context.Context) error {
		return s.notifier.BanLifted(ctx, t.Ban.UserID)
	})
	s.publish(ctx, EventReportUndone, t.Booking, requester, nil)

	return &t.Booking, nil
}

func (s *service) ConfirmCharging(ctx context.Context, requester uuid.UUID, id uuid.UUID) (b *Booking, err error) {
	ctx, span := tracer.Start(ctx, "booking.ConfirmCharging")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("booking.id", id.String()))

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.engine.ConfirmCharging(*current, requester)
	if err != nil {
		return nil, err
	}
	if !t.Changed {
		return &t.Booking, nil
	}

	if err := s.repo.MarkCharging(ctx, id, current.ChargingStatus); err != nil {
		return nil, storeError(err)
	}
	metrics.RecordChargingTransition(string(t.Booking.ChargingStatus))

	logger.Info("Charging confirmed", "booking_id", id, "by", requester)
	s.publish(ctx, EventChargingConfirmed, t.Booking, requester, nil)

	return &t.Booking, nil
}

func (s *service) Calendar(ctx context.Context, viewer uuid.UUID, isAdmin bool, from time.Time, days int) (out []CalendarDay, err error) {
	ctx, span := tracer.Start(ctx, "booking.Calendar")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("days", days))

	if days < 1 || days > MaxCalendarDays {
		return nil, ErrInvalidRange
	}

	cat := s.engine.Catalog()
	start := cat.Day(from)
	end := start.AddDate(0, 0, days)

	bannedUntil, err := s.bans.GetBannedUntil(ctx, viewer)
	if err != nil {
		return nil, unexpected(fmt.Errorf("ban lookup: %w", err))
	}

	// Night windows of the last day reach into the following morning.
	snapshot, err := s.repo.ListInRange(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, unexpected(fmt.Errorf("load calendar: %w", err))
	}

	return s.engine.BuildCalendar(snapshot, start, days, Viewer{ID: viewer, IsAdmin: isAdmin, BannedUntil: bannedUntil}, s.now()), nil
}

func (s *service) MyBookings(ctx context.Context, userID uuid.UUID) (*MyBookings, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, unexpected(fmt.Errorf("list bookings: %w", err))
	}

	now := s.now()
	out := &MyBookings{Upcoming: []Booking{}, History: []Booking{}}
	for _, b := range list {
		if b.IsActive() && b.EndTime.After(now) {
			out.Upcoming = append(out.Upcoming, b)
		} else {
			out.History = append(out.History, b)
		}
	}

	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, unexpected(fmt.Errorf("load booking: %w", err))
	}
	return b, nil
}

func (s *service) applyBan(ctx context.Context, ban *BanRequest) error {
	if ban == nil {
		return nil
	}
	if err := s.bans.SetBannedUntil(ctx, ban.UserID, ban.Until); err != nil {
		return unexpected(fmt.Errorf("update ban: %w", err))
	}
	if ban.Until != nil {
		metrics.RecordBanUpdate("set")
	} else {
		metrics.RecordBanUpdate("lift")
	}
	return nil
}

// notify runs after the state change is committed; failures are only logged.
func (s *service) notify(ctx context.Context, what string, fn func(context.Context) error) {
	if s.notifier == nil {
		return
	}
	if err := fn(ctx); err != nil {
		logger.Warn("Notification failed", "type", what, "error", err)
	}
}

func (s *service) publish(ctx context.Context, key string, b Booking, actor uuid.UUID, bannedUntil *time.Time) {
	if s.events == nil {
		return
	}
	ev := Event{
		BookingID:      b.ID,
		OwnerID:        b.UserID,
		ActorID:        actor,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		Status:         b.Status,
		ChargingStatus: b.ChargingStatus,
		BannedUntil:    bannedUntil,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.events.Publish(ctx, key, ev); err != nil {
		logger.Warn("Event publish failed", "routing_key", key, "error", err)
	}
}

// storeError keeps ErrConflict from a conditional update, which means the
// booking changed between read and write.
func storeError(err error) error {
	if errors.Is(err, ErrConflict) {
		return ErrConflict
	}
	return unexpected(err)
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrSlotInPast):
		return "past"
	default:
		return "error"
	}
}

func plainBookings(in []BookingWithProfile) []Booking {
	out := make([]Booking, len(in))
	for i := range in {
		out[i] = in[i].Booking
	}
	return out
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
