package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/hostel-reservation/internal/model"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

type GuestRepo struct{ DB *sql.DB }

func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{DB: db} }

// Create hashes the password, inserts the guest and returns its ID.
func (r *GuestRepo) Create(ctx context.Context, email, password, fullName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO guests (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		email, hash, strings.TrimSpace(fullName), role)
	if err != nil {
		if isDuplicateEntry(err) {
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

const guestColumns = "id,email,password_hash,full_name,role,is_active,created_at,updated_at"

// GetByEmail fetches a guest by normalized email.
func (r *GuestRepo) GetByEmail(ctx context.Context, email string) (model.Guest, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+guestColumns+" FROM guests WHERE email=? LIMIT 1", email)
}

// GetByID fetches a guest by id.
func (r *GuestRepo) GetByID(ctx context.Context, id uint64) (model.Guest, error) {
	return r.getOne(ctx, "SELECT "+guestColumns+" FROM guests WHERE id=? LIMIT 1", id)
}

func (r *GuestRepo) getOne(ctx context.Context, q string, arg interface{}) (model.Guest, error) {
	var g model.Guest
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&g.ID, &g.Email, &g.PasswordHash, &g.FullName, &g.Role, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrGuestNotFound
	}
	return g, err
}
