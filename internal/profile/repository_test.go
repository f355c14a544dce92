package profile

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileRowColumns = []string{"id", "email", "password_hash", "role", "first_name", "last_name", "phone", "avatar_url", "banned_until", "created_at"}

var aliceID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")

func setupProfileMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		sqlxDB.Close()
	}
	return repo, mock, closer
}

func aliceRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(profileRowColumns).
		AddRow(aliceID.String(), "alice@example.com", "hash", "member", "Alice", "Adler", nil, nil, nil, now)
}

func TestCreateAndFindProfile(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles (id, email, password_hash, role, first_name, last_name) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, email")).
		WithArgs(aliceID.String(), "alice@example.com", "hash", "member", "Alice", "Adler").
		WillReturnRows(aliceRow(now))

	p, err := repo.Create(context.Background(), &Profile{
		ID: aliceID, Email: "Alice@Example.com", PasswordHash: "hash", Role: "member", FirstName: "Alice", LastName: "Adler",
	})
	require.NoError(t, err)
	assert.Equal(t, aliceID, p.ID)
	assert.Nil(t, p.BannedUntil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE email = $1")).
		WithArgs("alice@example.com").
		WillReturnRows(aliceRow(now))

	found, err := repo.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.FirstName)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &Profile{ID: aliceID, Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs(aliceID.String()).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	_, err := repo.FindByID(context.Background(), aliceID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDetails(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	phone := "+49 170 000000"
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE profiles SET first_name = $1, last_name = $2, phone = $3, avatar_url = $4 WHERE id = $5")).
		WithArgs("Alice", "Becker", phone, nil, aliceID.String()).
		WillReturnRows(sqlmock.NewRows(profileRowColumns).
			AddRow(aliceID.String(), "alice@example.com", "hash", "member", "Alice", "Becker", phone, nil, nil, time.Now()))

	p, err := repo.UpdateDetails(context.Background(), aliceID, UpdateRequest{FirstName: "Alice", LastName: "Becker", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Becker", p.LastName)
	require.NotNil(t, p.Phone)
	assert.Equal(t, phone, *p.Phone)
}

func TestBannedUntil(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	until := time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT banned_until FROM profiles WHERE id = $1")).
		WithArgs(aliceID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"banned_until"}).AddRow(nil))

	got, err := repo.GetBannedUntil(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET banned_until = $1 WHERE id = $2")).
		WithArgs(until, aliceID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetBannedUntil(context.Background(), aliceID, &until))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT banned_until FROM profiles WHERE id = $1")).
		WithArgs(aliceID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"banned_until"}).AddRow(until))

	got, err = repo.GetBannedUntil(context.Background(), aliceID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(until))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET banned_until = $1 WHERE id = $2")).
		WithArgs(nil, aliceID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetBannedUntil(context.Background(), aliceID, nil))
}

func TestSetBannedUntil_UnknownProfile(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET banned_until")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetBannedUntil(context.Background(), aliceID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindContact(t *testing.T) {
	repo, mock, close := setupProfileMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, first_name FROM profiles WHERE id = $1")).
		WithArgs(aliceID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"email", "first_name"}).AddRow("alice@example.com", "Alice"))

	address, name, err := repo.FindContact(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", address)
	assert.Equal(t, "Alice", name)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, first_name FROM profiles")).
		WillReturnError(errors.New("connection reset"))

	_, _, err = repo.FindContact(context.Background(), aliceID)
	assert.Error(t, err)
}
