package domain

import "time"

// Session represents an active user session with a refresh token.
// Each device gets its own session. Besides authentication state, the
// session carries the user's currently opened shopping list: at most one
// per session, overwritten on open, cleared on close, and cleared silently
// when the referenced list no longer exists.
type Session struct {
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	IPAddress        string    `json:"ip_address,omitempty"`
	ClientName       string    `json:"client_name,omitempty"`

	// SelectedShoppingID is the id of the shopping list this session has
	// open for quick add/remove actions. Empty means no selection.
	SelectedShoppingID string `json:"selected_shopping_id,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// HasSelection reports whether the session has a shopping list open.
func (s *Session) HasSelection() bool {
	return s.SelectedShoppingID != ""
}
