package repository

import (
	"context"
	"encoding/json"
	"fmt"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/infrastructure/valkey"
)

// ValkeySessionStore implements domain.SessionStore on Valkey so several
// relay instances behind one page share sessions. Session creation uses
// SET NX, which keeps the one-session-per-participant rule across instances.
type ValkeySessionStore struct {
	client        *valkey.Client
	sessionPrefix string
	profilePrefix string
}

// NewValkeySessionStore creates a store on top of a client created via valkey.NewClient.
func NewValkeySessionStore(client *valkey.Client) *ValkeySessionStore {
	return &ValkeySessionStore{
		client:        client,
		sessionPrefix: client.Key("session") + ":",
		profilePrefix: client.Key("profile") + ":",
	}
}

func (s *ValkeySessionStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeySessionStore) CreateSessionIfAbsent(ctx context.Context, candidate domain.Session) (domain.Session, bool, error) {
	data, err := json.Marshal(candidate)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to marshal session: %w", err)
	}

	key := s.sessionPrefix + candidate.ParticipantID
	cmd := s.inner().B().Set().Key(key).Value(string(data)).Nx().Build()
	err = s.inner().Do(ctx, cmd).Error()
	if err == nil {
		return candidate, true, nil
	}
	if !valkey.IsNil(err) {
		return domain.Session{}, false, fmt.Errorf("failed to create session: %w", err)
	}

	// Someone else won the race; return their session.
	existing, err := s.GetSession(ctx, candidate.ParticipantID)
	if err != nil {
		return domain.Session{}, false, err
	}
	if existing == nil {
		return domain.Session{}, false, fmt.Errorf("session for %s vanished after SET NX", candidate.ParticipantID)
	}
	return *existing, false, nil
}

func (s *ValkeySessionStore) GetSession(ctx context.Context, participantID string) (*domain.Session, error) {
	var session domain.Session
	found, err := s.getJSON(ctx, s.sessionPrefix+participantID, &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (s *ValkeySessionStore) SaveProfile(ctx context.Context, profile domain.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	cmd := s.inner().B().Set().Key(s.profilePrefix + profile.ParticipantID).Value(string(data)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *ValkeySessionStore) GetProfile(ctx context.Context, participantID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	found, err := s.getJSON(ctx, s.profilePrefix+participantID, &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

func (s *ValkeySessionStore) getJSON(ctx context.Context, key string, out any) (bool, error) {
	cmd := s.inner().B().Get().Key(key).Build()
	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}
