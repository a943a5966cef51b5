package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
	"github.com/AzielCF/az-relay/pkg/scheduler"
)

// SessionRegistry maps participants to NLU sessions and owns the cached
// user profiles. Profile lookups are fire-and-forget and deduplicated per
// participant.
type SessionRegistry struct {
	store    domain.SessionStore
	profiles domain.ProfileFetcher
	clock    scheduler.Clock
	lookups  singleflight.Group
	newID    func() (uuid.UUID, error)
}

func NewSessionRegistry(store domain.SessionStore, profiles domain.ProfileFetcher, clock scheduler.Clock) *SessionRegistry {
	if clock == nil {
		clock = scheduler.RealClock()
	}
	return &SessionRegistry{
		store:    store,
		profiles: profiles,
		clock:    clock,
		newID:    uuid.NewUUID,
	}
}

// EnsureSession returns the participant's session id, allocating one the
// first time the participant is seen.
func (r *SessionRegistry) EnsureSession(ctx context.Context, participantID string) (string, error) {
	existing, err := r.store.GetSession(ctx, participantID)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if existing != nil {
		return existing.SessionID, nil
	}

	id, err := r.newID()
	if err != nil {
		return "", fmt.Errorf("failed to allocate session id: %w", err)
	}

	stored, created, err := r.store.CreateSessionIfAbsent(ctx, domain.Session{
		ParticipantID: participantID,
		SessionID:     id.String(),
		CreatedAt:     r.clock.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	if created {
		logrus.WithFields(logrus.Fields{
			"participant": participantID,
			"session":     stored.SessionID,
		}).Debug("[REGISTRY] New session")
	}
	return stored.SessionID, nil
}

// EnsureUser starts a profile lookup when none is cached and returns
// without waiting for it.
func (r *SessionRegistry) EnsureUser(ctx context.Context, participantID string) {
	if r.GetUser(ctx, participantID) != nil {
		return
	}
	r.lookups.DoChan(participantID, r.lookup(context.WithoutCancel(ctx), participantID))
}

// GetUser reads the profile cache. It returns nil when the profile is not
// resolved yet.
func (r *SessionRegistry) GetUser(ctx context.Context, participantID string) *domain.UserProfile {
	profile, err := r.store.GetProfile(ctx, participantID)
	if err != nil {
		logrus.WithError(err).Warnf("[REGISTRY] Failed to read profile of %s", participantID)
		return nil
	}
	return profile
}

// AwaitUser returns the cached profile or waits up to timeout for the
// lookup to finish. It issues a lookup if none is in flight. ok is false
// when the profile could not be resolved in time.
func (r *SessionRegistry) AwaitUser(ctx context.Context, participantID string, timeout time.Duration) (*domain.UserProfile, bool) {
	if profile := r.GetUser(ctx, participantID); profile != nil {
		return profile, true
	}

	ch := r.lookups.DoChan(participantID, r.lookup(context.WithoutCancel(ctx), participantID))
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false
		}
		profile, _ := res.Val.(*domain.UserProfile)
		return profile, profile != nil
	case <-r.clock.After(timeout):
		logrus.Debugf("[REGISTRY] Profile of %s not resolved within %s", participantID, timeout)
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

func (r *SessionRegistry) lookup(ctx context.Context, participantID string) func() (any, error) {
	return func() (any, error) {
		if r.profiles == nil {
			return nil, pkgError.UpstreamError("profile lookup is not configured")
		}
		profile, err := r.profiles.FetchProfile(ctx, participantID)
		if err != nil {
			logrus.WithError(err).Warnf("[REGISTRY] Profile lookup failed for %s", participantID)
			return nil, err
		}
		if profile == nil {
			return nil, pkgError.UpstreamError(fmt.Sprintf("empty profile for %s", participantID))
		}
		profile.ParticipantID = participantID
		if err := r.store.SaveProfile(ctx, *profile); err != nil {
			logrus.WithError(err).Errorf("[REGISTRY] Failed to cache profile of %s", participantID)
			return nil, err
		}
		logrus.Debugf("[REGISTRY] Cached profile of %s", participantID)
		return profile, nil
	}
}
