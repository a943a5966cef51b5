package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	coreconfig "github.com/AzielCF/az-relay/core/config"
	"github.com/AzielCF/az-relay/pkg/msgworker"
	"github.com/AzielCF/az-relay/pkg/utils"
	"github.com/AzielCF/az-relay/ui/rest"
	"github.com/AzielCF/az-relay/ui/rest/middleware"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the Messenger webhook over http",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	cfg := coreconfig.Global

	app := fiber.New(fiber.Config{
		Network:               "tcp",
		AppName:               "Az-Relay",
		DisableStartupMessage: true,
		ServerHeader:          "Hidden",
	})

	// Security: RequestID for audit trails
	app.Use(requestid.New())
	app.Use(middleware.Recovery())

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	base := app.Group(cfg.App.BasePath)
	rest.InitRestWebhook(base, dispatcher, cfg.Messenger.VerifyToken, cfg.Messenger.AppSecret)

	apiGroup := base.Group("/api")
	if len(cfg.App.BasicAuth) > 0 {
		account := make(map[string]string)
		for _, basicAuth := range cfg.App.BasicAuth {
			ba := strings.SplitN(basicAuth, ":", 2)
			if len(ba) != 2 {
				logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
			}
			account[ba[0]] = ba[1]
		}
		apiGroup.Use(basicauth.New(basicauth.Config{Users: account}))
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH is not set, /api endpoints are public")
	}

	health := rest.Health{
		Scheduler:  replyScheduler,
		Dispatcher: dispatcher,
		Pools:      []*msgworker.MessageWorkerPool{inboundPool, deliveryPool},
		ServerID:   utils.ServerID(cfg.App.ServerID),
		Version:    cfg.App.Version,
		StartedAt:  startedAt,
	}
	if vkClient != nil {
		health.Store = vkClient
	}
	rest.InitRestHealth(apiGroup, health)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	logrus.Infof("[REST] Listening on :%s%s/webhook", cfg.App.Port, cfg.App.BasePath)
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}

	StopApp()
}
