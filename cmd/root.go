package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AzielCF/az-relay/botengine"
	"github.com/AzielCF/az-relay/conversation/application"
	"github.com/AzielCF/az-relay/conversation/domain"
	"github.com/AzielCF/az-relay/conversation/repository"
	coreconfig "github.com/AzielCF/az-relay/core/config"
	"github.com/AzielCF/az-relay/infrastructure/messenger"
	"github.com/AzielCF/az-relay/infrastructure/valkey"
	"github.com/AzielCF/az-relay/pkg/msgworker"
	"github.com/AzielCF/az-relay/pkg/scheduler"
	"github.com/AzielCF/az-relay/pkg/utils"
)

var (
	appCtx    context.Context
	appCancel context.CancelFunc
	startedAt time.Time

	// Infrastructure
	vkClient        *valkey.Client
	messengerClient *messenger.Client
	nluClient       domain.NLUClient

	// Runtime
	replyScheduler *scheduler.Scheduler
	inboundPool    *msgworker.MessageWorkerPool
	deliveryPool   *msgworker.MessageWorkerPool

	// Conversation
	sessionRegistry *application.SessionRegistry
	dispatcher      *application.Dispatcher
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-relay",
	Short: "Messenger conversation relay",
	Long: `Receives Facebook Messenger webhook events, asks an NLU service what to answer
and delivers the replies back to the page in a paced order.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()

	flags.StringP("port", "p", "", "change port number with --port <number> | example: --port=8080")
	flags.BoolP("debug", "d", false, "hide or displaying log with --debug <true/false> | example: --debug=true")
	flags.StringSliceP("basic-auth", "b", nil, "basic auth credential for /api | -b=yourUsername:yourPassword")
	flags.String("base-path", "", `base path for subpath deployment --base-path <string> | example: --base-path="/relay"`)
	flags.String("verify-token", "", `webhook verify token --verify-token <string> | example: --verify-token="my-token"`)
	flags.String("nlu-provider", "", `nlu backend --nlu-provider <dialogflow|openai|gemini> | example: --nlu-provider=gemini`)
	flags.String("nlu-model", "", `chat model for the openai and gemini providers --nlu-model <string> | example: --nlu-model="gpt-4o-mini"`)
	flags.Bool("valkey", false, "store sessions in valkey instead of memory --valkey <true/false> | example: --valkey=true")
	flags.Int("message-workers", 0, "number of concurrent inbound workers --message-workers <number> | example: --message-workers=30 (default: 20)")
	flags.Int("message-queue-size", 0, "queue size per inbound worker --message-queue-size <number> | example: --message-queue-size=1500 (default: 1000)")
	flags.Int("delivery-workers", 0, "number of concurrent delivery workers --delivery-workers <number> | example: --delivery-workers=10 (default: 10)")

	bindings := map[string]string{
		"app_port":                  "port",
		"app_debug":                 "debug",
		"app_basic_auth":            "basic-auth",
		"app_base_path":             "base-path",
		"fb_verify_token":           "verify-token",
		"nlu_provider":              "nlu-provider",
		"nlu_model":                 "nlu-model",
		"valkey_enabled":            "valkey",
		"message_worker_pool_size":  "message-workers",
		"message_worker_queue_size": "message-queue-size",
		"delivery_worker_pool_size": "delivery-workers",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initEnvConfig loads configuration from environment variables and lets
// command line flags override it.
func initEnvConfig() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] Failed to load configuration: %v", err)
	}

	if viper.IsSet("app_port") {
		cfg.App.Port = viper.GetString("app_port")
	}
	if viper.IsSet("app_debug") {
		cfg.App.Debug = viper.GetBool("app_debug")
	}
	if viper.IsSet("app_basic_auth") {
		cfg.App.BasicAuth = viper.GetStringSlice("app_basic_auth")
	}
	if viper.IsSet("app_base_path") {
		cfg.App.BasePath = viper.GetString("app_base_path")
	}
	if viper.IsSet("fb_verify_token") {
		cfg.Messenger.VerifyToken = viper.GetString("fb_verify_token")
	}
	if viper.IsSet("nlu_provider") {
		cfg.NLU.Provider = strings.ToLower(viper.GetString("nlu_provider"))
	}
	if viper.IsSet("nlu_model") {
		cfg.NLU.Model = viper.GetString("nlu_model")
	}
	if viper.IsSet("valkey_enabled") {
		cfg.Database.ValkeyEnabled = viper.GetBool("valkey_enabled")
	}
	if viper.IsSet("message_worker_pool_size") {
		cfg.WorkerPool.Size = viper.GetInt("message_worker_pool_size")
	}
	if viper.IsSet("message_worker_queue_size") {
		cfg.WorkerPool.QueueSize = viper.GetInt("message_worker_queue_size")
	}
	if viper.IsSet("delivery_worker_pool_size") {
		cfg.WorkerPool.DeliverySize = viper.GetInt("delivery_worker_pool_size")
	}
}

func initApp() {
	cfg := coreconfig.Global
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())
	startedAt = time.Now()

	// 1. Session storage
	var store domain.SessionStore = repository.NewMemorySessionStore()
	if cfg.Database.ValkeyEnabled {
		client, err := valkey.NewClient(valkey.ConfigFrom(cfg.Database))
		if err != nil {
			logrus.Fatalf("[VALKEY] %v", err)
		}
		vkClient = client
		store = repository.NewValkeySessionStore(client)
		logrus.Infof("[VALKEY] Sessions stored in valkey at %s", cfg.Database.ValkeyAddress)
	}

	// 2. External collaborators
	messengerClient = messenger.NewClient(cfg.Messenger)

	var err error
	nluClient, err = botengine.NewNLUClient(appCtx, cfg.NLU, application.KnownActions())
	if err != nil {
		logrus.Fatalf("[NLU] Failed to create %s client: %v", cfg.NLU.Provider, err)
	}

	// 3. Worker pools and the reply scheduler
	deliveryPool = msgworker.NewMessageWorkerPool("delivery", cfg.WorkerPool.DeliverySize, cfg.WorkerPool.DeliveryQueueSize)
	deliveryPool.Start(appCtx)
	inboundPool = msgworker.NewMessageWorkerPool("inbound", cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	inboundPool.Start(appCtx)

	replyScheduler = scheduler.New(scheduler.RealClock(), deliveryPool)
	replyScheduler.Start(appCtx)

	// 4. Conversation core
	sessionRegistry = application.NewSessionRegistry(store, messengerClient, scheduler.RealClock())
	sequencer := application.NewSequencer(replyScheduler, messengerClient, cfg.Conversation.MessageSpacing)
	router := application.NewRouter(sequencer, nluClient, sessionRegistry, cfg.Conversation)
	dispatcher = application.NewDispatcher(sessionRegistry, router, messenger.NewLoggingEventHandler(), inboundPool)

	logrus.WithFields(logrus.Fields{
		"nlu":        cfg.NLU.Provider,
		"spacing_ms": cfg.Conversation.MessageSpacing.Milliseconds(),
		"valkey":     cfg.Database.ValkeyEnabled,
	}).Info("[APP] Relay initialized")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp stops accepting work, lets queued events finish and closes
// external connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	// Inbound first so handlers still running can schedule their replies.
	if inboundPool != nil {
		inboundPool.Stop()
	}
	if replyScheduler != nil {
		replyScheduler.Stop()
	}
	if deliveryPool != nil {
		deliveryPool.Stop()
	}
	if appCancel != nil {
		appCancel()
	}
	if vkClient != nil {
		vkClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
