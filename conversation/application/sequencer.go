package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/domain"
	pkgError "github.com/AzielCF/az-relay/pkg/error"
	"github.com/AzielCF/az-relay/pkg/scheduler"
)

// Plan computes the sends for items in delivery order. The delay of a send
// derives from the position of its source item: a standalone item at index
// i goes out at i*spacing, and a run of cards goes out at (i-1)*spacing
// where i is the index that closes the run. A run still open at the last
// item closes at that index, so it goes out one slot before the last card.
func Plan(recipientID string, items []domain.ReplyItem, spacing time.Duration) []domain.ScheduledSend {
	var (
		sends   []domain.ScheduledSend
		run     []domain.CardReply
		runPos  []int
		lastIdx = len(items) - 1
	)

	flush := func(closingIdx int) {
		slot := closingIdx - 1
		if slot < 0 {
			slot = 0
		}
		sends = append(sends, domain.ScheduledSend{
			RecipientID: recipientID,
			Payload:     domain.Outbound{Cards: run},
			Delay:       time.Duration(slot) * spacing,
			Positions:   runPos,
		})
		run, runPos = nil, nil
	}

	for i, item := range items {
		if item == nil {
			continue
		}
		if card, ok := item.(domain.CardReply); ok {
			run = append(run, card)
			runPos = append(runPos, i)
			if i == lastIdx {
				flush(i)
			}
			continue
		}
		if len(run) > 0 {
			flush(i)
		}
		sends = append(sends, domain.ScheduledSend{
			RecipientID: recipientID,
			Payload:     domain.Outbound{Item: item},
			Delay:       time.Duration(i) * spacing,
			Positions:   []int{i},
		})
	}
	if len(run) > 0 {
		// Only reachable when trailing items were nil.
		flush(lastIdx)
	}
	return sends
}

// Sequencer turns reply items into scheduled deliveries.
type Sequencer struct {
	scheduler *scheduler.Scheduler
	deliverer domain.Deliverer
	spacing   time.Duration
}

func NewSequencer(s *scheduler.Scheduler, deliverer domain.Deliverer, spacing time.Duration) *Sequencer {
	return &Sequencer{scheduler: s, deliverer: deliverer, spacing: spacing}
}

// Sequence schedules items for recipientID and returns the plan it used.
func (s *Sequencer) Sequence(recipientID string, items []domain.ReplyItem) []domain.ScheduledSend {
	plan := Plan(recipientID, items, s.spacing)
	base := s.scheduler.Now()
	for _, send := range plan {
		s.schedule(base, send)
	}
	logrus.WithFields(logrus.Fields{
		"recipient": recipientID,
		"items":     len(items),
		"sends":     len(plan),
	}).Debug("[SEQUENCER] Sequenced reply")
	return plan
}

// SendAfter schedules a single item once delay has elapsed.
func (s *Sequencer) SendAfter(recipientID string, item domain.ReplyItem, delay time.Duration) {
	s.schedule(s.scheduler.Now(), domain.ScheduledSend{
		RecipientID: recipientID,
		Payload:     domain.Outbound{Item: item},
		Delay:       delay,
	})
}

// Signal schedules a sender action for immediate delivery, behind anything
// already due for the recipient.
func (s *Sequencer) Signal(recipientID string, action domain.SenderAction) {
	s.schedule(s.scheduler.Now(), domain.ScheduledSend{
		RecipientID: recipientID,
		Payload:     domain.Outbound{Action: action},
	})
}

func (s *Sequencer) schedule(base time.Time, send domain.ScheduledSend) {
	recipient := send.RecipientID
	out := send.Payload
	s.scheduler.ScheduleAt(recipient, out.Describe(), base.Add(send.Delay), func(ctx context.Context) error {
		if err := s.deliverer.Deliver(ctx, recipient, out); err != nil {
			logrus.WithFields(logrus.Fields{
				"recipient": recipient,
				"payload":   out.Describe(),
			}).WithError(err).Warn("[SEQUENCER] Delivery failed")
			return pkgError.DeliveryError(err.Error())
		}
		return nil
	})
}
