// Package userrepo stores the identity fields the core owns directly
// (spec §3 "Ownership"): phone number and push token. Credits live in
// ledgerrepo, not here.
package userrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (repo *Repository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, `SELECT id, phone_number, push_token FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.PhoneNumber, &user.PushToken)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// FindPhoneNumbers resolves a batch of participant ids to phone numbers
// in one round trip, used when an order completes (spec §4.5.4 step 5).
func (repo *Repository) FindPhoneNumbers(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}
	rows, err := repo.db.Query(ctx, `SELECT id, phone_number FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		zap.L().Error("can't resolve phone numbers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	phoneMap := make(map[string]string, len(userIDs))
	for rows.Next() {
		var id, phone string
		if err := rows.Scan(&id, &phone); err != nil {
			zap.L().Error("can't scan phone number row", zap.Error(err))
			return nil, err
		}
		phoneMap[id] = phone
	}
	return phoneMap, rows.Err()
}

func (repo *Repository) FindByPhoneNumber(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	err := repo.db.QueryRow(ctx, `SELECT id, phone_number, push_token FROM users WHERE phone_number = $1`, phone).
		Scan(&user.ID, &user.PhoneNumber, &user.PushToken)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		zap.L().Error("can't find user by phone", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// Create persists a user created on first successful phone verification
// (spec §3 "Lifecycle"), the one write path the OTP provider's
// collaborator triggers into the core.
func (repo *Repository) Create(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	user.PhoneNumber = phone
	err := repo.db.QueryRow(ctx, `INSERT INTO users (phone_number) VALUES ($1) RETURNING id, phone_number, push_token`, phone).
		Scan(&user.ID, &user.PhoneNumber, &user.PushToken)
	if err != nil {
		zap.L().Error("can't create user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

// PushToken satisfies notify.UserLookup, resolving a user's current
// push delivery handle for the dispatcher.
func (repo *Repository) PushToken(ctx context.Context, userID string) (string, error) {
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.PushToken, nil
}

func (repo *Repository) SetPushToken(ctx context.Context, userID, token string) error {
	_, err := repo.db.Exec(ctx, `UPDATE users SET push_token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		zap.L().Error("can't set push token", zap.Error(err))
		return err
	}
	return nil
}
