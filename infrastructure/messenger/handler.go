package messenger

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/domain"
)

// LoggingEventHandler is the domain.PlatformEventHandler for events that
// only need to be recorded.
type LoggingEventHandler struct{}

func NewLoggingEventHandler() *LoggingEventHandler {
	return &LoggingEventHandler{}
}

func (LoggingEventHandler) HandleEcho(ctx context.Context, ev domain.Echo) {
	logrus.WithFields(logrus.Fields{
		"recipient":  ev.RecipientID,
		"message_id": ev.MessageID,
		"app_id":     ev.AppID,
		"metadata":   ev.Metadata,
	}).Debug("[MESSENGER] Echo received")
}

func (LoggingEventHandler) HandleDelivery(ctx context.Context, ev domain.DeliveryReceipt) {
	for _, mid := range ev.MessageIDs {
		logrus.Debugf("[MESSENGER] Delivery confirmed for message %s", mid)
	}
	logrus.WithFields(logrus.Fields{
		"sender":    ev.SenderID,
		"messages":  len(ev.MessageIDs),
		"watermark": ev.Watermark,
	}).Debug("[MESSENGER] All messages before watermark were delivered")
}

func (LoggingEventHandler) HandleRead(ctx context.Context, ev domain.ReadReceipt) {
	logrus.WithFields(logrus.Fields{
		"sender":    ev.SenderID,
		"watermark": ev.Watermark,
	}).Debug("[MESSENGER] Messages read")
}

func (LoggingEventHandler) HandleAccountLink(ctx context.Context, ev domain.AccountLink) {
	logrus.WithFields(logrus.Fields{
		"sender": ev.SenderID,
		"status": ev.Status,
	}).Info("[MESSENGER] Account link event")
}

func (LoggingEventHandler) HandleAuthentication(ctx context.Context, ev domain.Authentication) {
	logrus.WithFields(logrus.Fields{
		"sender": ev.SenderID,
		"page":   ev.RecipientID,
		"ref":    ev.Ref,
	}).Info("[MESSENGER] Opt-in received")
}
