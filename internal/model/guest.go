package model

import "time"

// Guest roles stored in guests.role.
const (
	RoleGuest = "GUEST"
	RoleStaff = "STAFF"
)

// Guest is an account able to authenticate against the API.  Ordinary
// guests own reservations; STAFF accounts operate the front desk
// (check-in, check-out, room setup).
type Guest struct {
	ID           uint64    // guests.id
	Email        string    // guests.email
	PasswordHash string    // guests.password_hash
	FullName     string    // guests.full_name
	Role         string    // guests.role
	IsActive     bool      // guests.is_active
	CreatedAt    time.Time // guests.created_at
	UpdatedAt    time.Time // guests.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	GuestID   uint64     // refresh_tokens.guest_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
