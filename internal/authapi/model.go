package authapi

import (
	"time"

	"github.com/contexmem/console/internal/device"
)

// User is the authenticated principal as the auth service reports it.
type User struct {
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Session is the (user_id, session_id) pair the auth service issues on a
// completed login or signup.
type Session struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// Transaction is an in-progress signup or login awaiting OTP confirmation.
// It lives only in the memory of the active flow; the server forgets it on
// its own schedule.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	OTPExpiresAt  time.Time `json:"otp_expires_at"`
}

// SessionRecord is one device session in the all-sessions listing.
type SessionRecord struct {
	UserID     string      `json:"user_id"`
	SessionID  string      `json:"session_id"`
	DeviceInfo device.Info `json:"device_info"`
	CreatedAt  time.Time   `json:"created_at"`
	LastSeenAt time.Time   `json:"last_seen_at"`
	Current    bool        `json:"current"`
}

// LoginResult bundles the user and session returned by the completion calls.
type LoginResult struct {
	User    User    `json:"user"`
	Session Session `json:"session"`
}
