package local

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-crm-nosql/internal/domain"
)

// userRecord keeps the password hash, which domain.User never serialises.
type userRecord struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		UserID:       u.UserID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		UserID:       r.UserID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	var rec userRecord
	if err := getJSON(ctx, r.db.db, prefixUser+userID, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var userID string
	if err := getJSON(ctx, r.db.db, emailKey(email), &userID); err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// Put stores u and its e-mail index entry. An e-mail already owned by a
// different user is a conflict.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	return r.db.withTx(ctx, func(q queryer) error {
		var owner string
		err := getJSON(ctx, q, emailKey(u.Email), &owner)
		switch {
		case err == nil && owner != u.UserID:
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		case err != nil && !domain.IsNotFound(err):
			return err
		}
		if err := putJSON(ctx, q, prefixUser+u.UserID, toUserRecord(u)); err != nil {
			return err
		}
		return putJSON(ctx, q, emailKey(u.Email), u.UserID)
	})
}

func emailKey(email string) string {
	return prefixUserEmail + strings.ToLower(strings.TrimSpace(email))
}
