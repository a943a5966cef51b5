package domain

import (
	"context"
	"time"
)

// Session binds a participant to the opaque token handed to the NLU service.
type Session struct {
	ParticipantID string    `json:"participant_id"`
	SessionID     string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserProfile is the cached platform profile of a participant.
type UserProfile struct {
	ParticipantID     string `json:"participant_id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_pic"`
	Locale            string `json:"locale"`
	Timezone          int    `json:"timezone"`
	Gender            string `json:"gender"`
}

// SessionStore holds the per-participant session and profile caches.
// Implementations must make CreateSessionIfAbsent an atomic
// check-then-insert.
type SessionStore interface {
	// CreateSessionIfAbsent stores candidate unless a session already exists
	// and returns the stored one. created is true when candidate was stored.
	CreateSessionIfAbsent(ctx context.Context, candidate Session) (stored Session, created bool, err error)

	// GetSession returns (nil, nil) when no session exists.
	GetSession(ctx context.Context, participantID string) (*Session, error)

	SaveProfile(ctx context.Context, profile UserProfile) error

	// GetProfile returns (nil, nil) when no profile is cached.
	GetProfile(ctx context.Context, participantID string) (*UserProfile, error)
}

// ProfileFetcher looks up a participant's profile on the platform.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, participantID string) (*UserProfile, error)
}
