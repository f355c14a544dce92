package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"os"
	"strings"
	"testing"
	"time"

	"chargeslot/internal/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()

	code := m.Run()
	os.Exit(code)
}

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(rdb *redis.Client) (*Service, *[]sentMail) {
	svc := NewWithClient(rdb, "noreply@chargeslot.local", "ChargeSlot", "smtp.test.com", "587", "", "")
	var sent []sentMail
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return svc, &sent
}

func TestSend(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*`).SetVal(1)

	svc, _ := newTestService(db)

	err := svc.Send(context.Background(), "user@example.com", "User", "Hallo", "Test body")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectLPush("emails", `.*`).SetErr(assert.AnError)

	svc, _ := newTestService(db)

	err := svc.Send(context.Background(), "user@example.com", "User", "Hallo", "Test body")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplatedMailsAreQueued(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	tests := []struct {
		name     string
		typ      string
		send     func(*Service) error
		contains string
	}{
		{"confirmation", TypeBookingConfirmation, func(s *Service) error {
			return s.SendBookingConfirmation(ctx, "a@example.com", "Anna", start, end)
		}, "10.06.2024 08:00"},
		{"cancellation", TypeBookingCancellation, func(s *Service) error {
			return s.SendCancellation(ctx, "a@example.com", "Anna", start, end)
		}, "storniert"},
		{"ban notice", TypeBanNotice, func(s *Service) error {
			return s.SendBanNotice(ctx, "a@example.com", "Anna", start.AddDate(0, 0, 7))
		}, "17.06.2024"},
		{"ban lifted", TypeBanLifted, func(s *Service) error {
			return s.SendBanLifted(ctx, "a@example.com", "Anna")
		}, "wieder buchen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			mock.Regexp().ExpectLPush("emails", `"type":"`+tt.typ+`"`).SetVal(1)

			svc, _ := newTestService(db)
			require.NoError(t, tt.send(svc))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProcessNext_Sends(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc, sent := newTestService(db)

	job, _ := json.Marshal(EmailJob{Type: TypeBanNotice, To: "b@example.com", Subject: "Buchungssperre", Body: "x"})
	mock.ExpectBRPop(popTimeout, "emails").SetVal([]string{"emails", string(job)})
	mock.ExpectLLen("emails").SetVal(0)

	svc.processNext(context.Background())

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.test.com:587", mail.addr)
	assert.Equal(t, []string{"b@example.com"}, mail.to)
	assert.True(t, strings.Contains(mail.msg, "Subject: Buchungssperre"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessNext_MovesToFailedAfterLastAttempt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc, _ := newTestService(db)
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("smtp down")
	}

	job, _ := json.Marshal(EmailJob{Type: TypeGeneric, To: "c@example.com", Tries: maxTries - 1})
	mock.ExpectBRPop(popTimeout, "emails").SetVal([]string{"emails", string(job)})
	mock.Regexp().ExpectLPush("emails:failed", `smtp down`).SetVal(1)

	svc.processNext(context.Background())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueLength(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectLLen("emails").SetVal(5)

	svc, _ := newTestService(db)

	assert.Equal(t, int64(5), svc.QueueLength(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeContacts map[uuid.UUID][2]string

func (f fakeContacts) FindContact(_ context.Context, id uuid.UUID) (string, string, error) {
	c, ok := f[id]
	if !ok {
		return "", "", errors.New("no such user")
	}
	return c[0], c[1], nil
}

func TestNotifier(t *testing.T) {
	known := uuid.New()
	contacts := fakeContacts{known: {"anna@example.com", "Anna"}}

	t.Run("ban issued", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.Regexp().ExpectLPush("emails", `anna@example.com`).SetVal(1)

		svc, _ := newTestService(db)
		n := NewNotifier(svc, contacts, time.UTC)

		require.NoError(t, n.BanIssued(context.Background(), known, time.Now().Add(time.Hour)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		svc, _ := newTestService(db)
		n := NewNotifier(svc, contacts, nil)

		err := n.BanLifted(context.Background(), uuid.New())
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	svc, _ := newTestService(db)

	assert.NoError(t, svc.Ping(context.Background()))
	assert.Error(t, svc.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
