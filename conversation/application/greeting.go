package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/AzielCF/az-relay/conversation/domain"
)

// Greet welcomes the participant by first name. It waits for the profile
// for at most the configured greeting wait and falls back to the generic
// greeting when the profile is not there in time.
func (r *Router) Greet(ctx context.Context, recipientID string) {
	text := r.cfg.GenericGreeting
	if profile, ok := r.registry.AwaitUser(ctx, recipientID, r.cfg.GreetingWait); ok {
		text = greetingFor(r.cfg.GreetingTemplate, r.cfg.GenericGreeting, profile)
	}
	r.seq.Sequence(recipientID, []domain.ReplyItem{domain.TextReply{Text: text}})
}

func greetingFor(template, generic string, profile *domain.UserProfile) string {
	name := strings.TrimSpace(profile.FirstName)
	if name == "" || !strings.Contains(template, "%s") {
		return generic
	}
	return fmt.Sprintf(template, name)
}
