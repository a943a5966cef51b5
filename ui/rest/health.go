package rest

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"

	"github.com/AzielCF/az-relay/conversation/application"
	"github.com/AzielCF/az-relay/core/config"
	"github.com/AzielCF/az-relay/pkg/msgworker"
	"github.com/AzielCF/az-relay/pkg/scheduler"
	"github.com/AzielCF/az-relay/pkg/utils"
)

// Pinger is implemented by remote session stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	Scheduler  *scheduler.Scheduler
	Dispatcher *application.Dispatcher
	Pools      []*msgworker.MessageWorkerPool
	Store      Pinger
	ServerID   string
	Version    string
	StartedAt  time.Time
}

func InitRestHealth(app fiber.Router, handler Health) Health {
	app.Get("/health", handler.GetStatus)
	app.Get("/health/pools", handler.GetPoolStats)
	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	now := time.Now()
	sched := h.Scheduler.Stats()

	nextDue := "none"
	if !sched.NextDue.IsZero() {
		nextDue = humanize.RelTime(sched.NextDue, now, "ago", "from now")
	}

	store := "memory"
	if h.Store != nil {
		store = "valkey: ok"
		if err := h.Store.Ping(c.UserContext()); err != nil {
			store = "valkey: " + err.Error()
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Relay is running",
		Results: map[string]any{
			"server_id":  h.ServerID,
			"version":    h.Version,
			"started":    humanize.Time(h.StartedAt),
			"uptime":     strings.TrimSpace(humanize.RelTime(h.StartedAt, now, "", "")),
			"scheduler":  sched,
			"next_send":  nextDue,
			"scheduled":  humanize.Comma(sched.TotalScheduled),
			"dispatcher": h.Dispatcher.Stats(),
			"store":      store,
			"settings":   config.GetAllSettings(),
		},
	})
}
