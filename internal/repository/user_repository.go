package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/pnj-dev/facility-booking/internal/model"
	"github.com/pnj-dev/facility-booking/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userCols = "id, name, email, password_hash, role, organization, phone, created_at, updated_at"

// Create inserts a user and returns its ID. Emails are stored
// lowercased so the unique index catches case-variant duplicates.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, organization, phone *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, organization, phone) VALUES (?,?,?,?,?,?)",
		name, email, hash, string(role), organization, phone)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// EnsureAdmin creates the given admin account if no user with that
// email exists yet. Used at startup to bootstrap the two admin roles
// from the environment so a fresh deployment is immediately usable.
func (r *UserRepo) EnsureAdmin(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	if u, err := r.GetByEmail(ctx, email); err == nil {
		return u.ID, nil
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}
	id, err := r.Create(ctx, name, email, password, role, nil, nil, cost)
	if errors.Is(err, ErrEmailExists) {
		// lost a startup race with another replica
		u, gerr := r.GetByEmail(ctx, email)
		if gerr != nil {
			return 0, gerr
		}
		return u.ID, nil
	}
	return id, err
}
