package model

import (
	"strings"
	"time"

	"github.com/oneminute/oneminute-go/internal/crypto"
	"github.com/oneminute/oneminute-go/internal/session"
)

// maskRune replaces every password character while the password is hidden.
const maskRune = "•"

// Preferences are the persisted settings of a generator session.
// The generated password is never part of them.
type Preferences struct {
	SessionID string
	Length    int
	Options   crypto.Options
	UpdatedAt time.Time
}

// CreateSessionRequest optionally seeds a new session's settings.
type CreateSessionRequest struct {
	Length    int   `json:"length"`
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Numbers   *bool `json:"numbers"`
	Symbols   *bool `json:"symbols"`
}

// SetLengthRequest changes a session's password length.
type SetLengthRequest struct {
	Length int `json:"length"`
}

// SetOptionsRequest changes a session's character classes; nil keeps the current value.
type SetOptionsRequest struct {
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Numbers   *bool `json:"numbers"`
	Symbols   *bool `json:"symbols"`
}

// SessionResponse is the API view of a session snapshot.
type SessionResponse struct {
	ID       string          `json:"id"`
	Version  uint64          `json:"version"`
	Length   int             `json:"length"`
	Options  crypto.Options  `json:"options"`
	Password string          `json:"password"`
	Visible  bool            `json:"visible"`
	Copied   bool            `json:"copied"`
	Strength crypto.Strength `json:"strength"`
}

// CreateSessionResponse is returned when a session is created.
type CreateSessionResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// NewSessionResponse converts a snapshot, masking the password when it is hidden.
func NewSessionResponse(s session.Snapshot) SessionResponse {
	password := s.Password
	if !s.Visible {
		password = strings.Repeat(maskRune, len(s.Password))
	}

	return SessionResponse{
		ID:       s.ID,
		Version:  s.Version,
		Length:   s.Length,
		Options:  s.Options,
		Password: password,
		Visible:  s.Visible,
		Copied:   s.Copied,
		Strength: s.Strength,
	}
}
