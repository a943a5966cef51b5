package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-relay/conversation/application"
	"github.com/AzielCF/az-relay/infrastructure/messenger"
	"github.com/AzielCF/az-relay/pkg/utils"
	"github.com/AzielCF/az-relay/ui/rest/middleware"
	"github.com/AzielCF/az-relay/validations"
)

const (
	IndexGreeting = "Hello world, I am a chat bot"
	EventReceived = "EVENT_RECEIVED"
)

type Webhook struct {
	Dispatcher  *application.Dispatcher
	VerifyToken string
}

func InitRestWebhook(app fiber.Router, dispatcher *application.Dispatcher, verifyToken, appSecret string) Webhook {
	handler := Webhook{Dispatcher: dispatcher, VerifyToken: verifyToken}

	app.Get("/", handler.Index)
	app.Get("/webhook", handler.Verify)
	app.Post("/webhook", middleware.WebhookSignature(appSecret), handler.Receive)

	return handler
}

func (h *Webhook) Index(c *fiber.Ctx) error {
	return c.SendString(IndexGreeting)
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *Webhook) Verify(c *fiber.Ctx) error {
	request := messenger.VerifyRequest{
		Mode:      c.Query("hub.mode"),
		Token:     c.Query("hub.verify_token"),
		Challenge: c.Query("hub.challenge"),
	}
	if err := validations.ValidateVerifyRequest(c.UserContext(), request, h.VerifyToken); err != nil {
		logrus.Warnf("[WEBHOOK] Verification rejected: %v", err)
		return c.SendStatus(fiber.StatusForbidden)
	}

	logrus.Info("[WEBHOOK] Webhook verified")
	return c.Status(fiber.StatusOK).SendString(request.Challenge)
}

// Receive decodes a webhook batch, queues its events and acknowledges at
// once. Event outcomes never change the response.
func (h *Webhook) Receive(c *fiber.Ctx) error {
	payload, err := messenger.DecodeWebhook(c.Body())
	utils.PanicIfNeeded(err)

	err = validations.ValidateWebhookPayload(c.UserContext(), payload)
	utils.PanicIfNeeded(err)

	events := payload.Events()
	logrus.WithFields(logrus.Fields{
		"entries": len(payload.Entry),
		"events":  len(events),
	}).Debug("[WEBHOOK] Batch received")

	h.Dispatcher.Dispatch(c.UserContext(), events)
	return c.Status(fiber.StatusOK).SendString(EventReceived)
}
