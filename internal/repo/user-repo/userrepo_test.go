package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/bundl/bundl/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	t.Cleanup(mockDB.Close)

	return repo, mockDB
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		userID    string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:   "user found",
			userID: "u1",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"id", "phone_number", "push_token"}).
					AddRow("u1", "+15551234567", "push-token")
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone_number, push_token FROM users WHERE id = $1")).
					WithArgs("u1").WillReturnRows(rows)
			},
			result: &domain.User{ID: "u1", PhoneNumber: "+15551234567", PushToken: "push-token"},
		},
		{
			name:   "user not found",
			userID: "missing",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone_number, push_token FROM users WHERE id = $1")).
					WithArgs("missing").WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name:   "store error",
			userID: "u2",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone_number, push_token FROM users WHERE id = $1")).
					WithArgs("u2").WillReturnError(errors.New("db down"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			user, err := repo.FindByID(context.Background(), tt.userID)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.result, user)
		})
	}
}

func TestRepository_FindPhoneNumbers(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("empty input short-circuits", func(t *testing.T) {
		m, err := repo.FindPhoneNumbers(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("resolves a batch", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "phone_number"}).
			AddRow("u1", "+15551234567").
			AddRow("u2", "+15557654321")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone_number FROM users WHERE id = ANY($1)")).
			WithArgs([]string{"u1", "u2"}).WillReturnRows(rows)

		m, err := repo.FindPhoneNumbers(context.Background(), []string{"u1", "u2"})
		assert.NoError(t, err)
		assert.Equal(t, map[string]string{"u1": "+15551234567", "u2": "+15557654321"}, m)
	})
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows([]string{"id", "phone_number", "push_token"}).
		AddRow("u3", "+15559999999", "")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (phone_number) VALUES ($1) RETURNING id, phone_number, push_token")).
		WithArgs("+15559999999").WillReturnRows(rows)

	user, err := repo.Create(context.Background(), "+15559999999")
	assert.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "u3", PhoneNumber: "+15559999999"}, user)
}

func TestRepository_SetPushToken(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET push_token = $1 WHERE id = $2")).
		WithArgs("new-token", "u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.SetPushToken(context.Background(), "u1", "new-token")
	assert.NoError(t, err)
}

func TestRepository_PushToken(t *testing.T) {
	repo, mock := NewMock(t)

	rows := pgxmock.NewRows([]string{"id", "phone_number", "push_token"}).
		AddRow("u1", "+15551234567", "abc")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone_number, push_token FROM users WHERE id = $1")).
		WithArgs("u1").WillReturnRows(rows)

	token, err := repo.PushToken(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, "abc", token)
}
