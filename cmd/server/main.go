package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	// Internal packages
	"github.com/sundinlabs/multibot/internal/adapter/ai/elevenlabs"
	"github.com/sundinlabs/multibot/internal/adapter/ai/openai"
	"github.com/sundinlabs/multibot/internal/adapter/cache"
	"github.com/sundinlabs/multibot/internal/adapter/external/notification"
	"github.com/sundinlabs/multibot/internal/adapter/external/payment"
	"github.com/sundinlabs/multibot/internal/adapter/http/fiber/handlers"
	"github.com/sundinlabs/multibot/internal/adapter/http/fiber/middleware"
	"github.com/sundinlabs/multibot/internal/adapter/messaging/meta"
	"github.com/sundinlabs/multibot/internal/adapter/messaging/twilio"
	"github.com/sundinlabs/multibot/internal/adapter/queue"
	fsrepo "github.com/sundinlabs/multibot/internal/adapter/storage/firestore"
	"github.com/sundinlabs/multibot/internal/adapter/storage/postgres"
	"github.com/sundinlabs/multibot/internal/adapter/vault"
	wsAdapter "github.com/sundinlabs/multibot/internal/adapter/websocket"
	"github.com/sundinlabs/multibot/internal/observability/telemetry"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/internal/service/actions"
	"github.com/sundinlabs/multibot/internal/service/auth"
	"github.com/sundinlabs/multibot/internal/service/billing"
	"github.com/sundinlabs/multibot/internal/service/bots"
	"github.com/sundinlabs/multibot/internal/service/conversation"
	"github.com/sundinlabs/multibot/internal/service/email"
	"github.com/sundinlabs/multibot/internal/service/health"
	"github.com/sundinlabs/multibot/internal/service/leads"
	"github.com/sundinlabs/multibot/internal/service/voice"
	"github.com/sundinlabs/multibot/pkg/config"
)

const (
	serviceName    = "multibot-backend"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Multibot Backend",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Vault overrides config-file credentials when enabled
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Warn("Vault unavailable, using config credentials", zap.Error(err))
		} else {
			if v, err := secrets.GetDatabaseCredentials(); err == nil {
				cfg.Database.URL = v
			}
			if v, err := secrets.GetOpenAIAPIKey(); err == nil {
				cfg.OpenAI.APIKey = v
			}
			if v, err := secrets.GetElevenLabsAPIKey(); err == nil {
				cfg.ElevenLabs.APIKey = v
			}
			if sid, token, err := secrets.GetTwilioCredentials(); err == nil {
				cfg.Twilio.AccountSID = sid
				cfg.Twilio.AuthToken = token
			}
			if v, err := secrets.GetMetaPageToken(); err == nil {
				cfg.Meta.PageToken = v
			}
			if v, err := secrets.GetStripeAPIKey(); err == nil {
				cfg.Billing.Stripe.SecretKey = v
			}
		}
	}

	// 3. Initialize OpenTelemetry (Distributed Tracing)
	tracerProvider, err := telemetry.InitTracer(serviceName)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// 4. Initialize PostgreSQL (operator accounts)
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 5. Initialize Redis Cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
		redisCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer redisCache.Close()

	// 6. Initialize Message Queue
	var messageQueue queue.MessageQueue
	switch cfg.Queue.Backend {
	case "rabbitmq":
		messageQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
	default:
		messageQueue, err = queue.NewNATSQueue(cfg.NATS.URL, logger)
	}
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()

	// 7. Initialize Firestore (leads, usage, Instagram links)
	ctx := context.Background()
	fsClient, err := fsrepo.NewClient(ctx, cfg.Firestore, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Firestore", zap.Error(err))
	}
	defer fsClient.Close()

	userRepo := postgres.NewUserRepository(db, logger)
	leadRepo := fsrepo.NewLeadRepository(fsClient, logger)
	usageRepo := fsrepo.NewUsageRepository(fsClient, logger)
	igRepo := fsrepo.NewInstagramRepository(fsClient, logger)

	// 8. Load the Bot Registry
	registry, err := bots.NewRegistry(cfg.Bots.Dir, logger)
	if err != nil {
		logger.Fatal("Failed to load bot registry", zap.Error(err))
	}
	logger.Info("Bot registry loaded", zap.Int("bots", len(registry.All())))

	// 9. Initialize Messaging and AI Clients
	twilioClient := twilio.NewClient(cfg.Twilio, logger)
	metaClient := meta.NewClient(cfg.Meta, logger)
	openaiClient := openai.NewClient(cfg.OpenAI, logger)
	elevenClient := elevenlabs.NewClient(cfg.ElevenLabs, logger)
	tokenStore := elevenlabs.NewTokenStore(cfg.ElevenLabs.TokenTTL)

	statusURL := ""
	if cfg.Bots.RemoteStatuses {
		statusURL = cfg.Bots.StatusURL
	}
	remoteStatuses := meta.NewRemoteStatusCache(statusURL, cfg.Meta.StatusTTL, logger)

	// 10. Initialize WebSocket Hub (panel live feed)
	wsHub := wsAdapter.NewHub()
	go wsHub.Run()

	// 11. Initialize Services (Business Logic Layer)
	accessDur := cfg.JWT.AccessTokenDuration
	if accessDur <= 0 {
		accessDur = 15 * time.Minute
	}
	refreshDur := cfg.JWT.RefreshTokenDuration
	if refreshDur <= 0 {
		refreshDur = 7 * 24 * time.Hour
	}
	jwtService := auth.NewJWTService(cfg.JWT.Secret, accessDur, refreshDur, redisCache, logger)
	authService := auth.NewService(userRepo, jwtService, logger)
	rbacService := auth.NewRBACService(logger)

	emailCfg := &email.Config{
		Provider:       cfg.Notification.Email.Provider,
		FromEmail:      cfg.Notification.Email.From,
		FromName:       cfg.Notification.Email.FromName,
		SendGridAPIKey: cfg.Notification.Email.APIKey,
	}
	var emailService ports.EmailService
	if adapter, err := notification.NewEmailAdapter(emailCfg, logger); err != nil {
		logger.Warn("Email disabled", zap.Error(err))
	} else {
		emailService = adapter
	}

	var gateway ports.PaymentGateway
	if cfg.Billing.Stripe.Enabled {
		gateway = payment.NewStripeService(cfg.Billing.Stripe, logger)
	}

	billingService := billing.NewService(usageRepo, registry, twilioClient, messageQueue, gateway, emailService, cfg.Billing, logger)
	if err := billingService.StartWorker(ctx); err != nil {
		logger.Fatal("Failed to start billing worker", zap.Error(err))
	}

	conversationService := conversation.NewService(
		registry,
		leadRepo,
		igRepo,
		openaiClient,
		metaClient,
		billingService,
		remoteStatuses,
		wsHub,
		redisCache,
		conversation.Config{
			DefaultBot:     cfg.Bots.DefaultBot,
			DefaultIGPage:  cfg.Bots.DefaultIGPage,
			BookingURL:     cfg.Links.BookingURL,
			AppDownloadURL: cfg.Links.AppDownloadURL,
			ResendCooldown: cfg.Links.ResendCooldown,
			Model:          cfg.OpenAI.Model,
			Temperature:    cfg.OpenAI.Temperature,
		},
		logger,
	)

	leadService := leads.NewService(leadRepo, registry, twilioClient, wsHub, logger)
	linkSender := actions.NewService(registry, twilioClient, cfg.Links, logger)
	voiceService := voice.NewService(openaiClient, registry, cfg.OpenAI.Realtime, logger)
	pushService := notification.NewPushAdapter(cfg.Notification.Push.ServerKey, logger)

	// 12. Initialize the Media Stream bridge (Twilio <-> realtime model)
	dial := func(ctx context.Context, model string, params openai.RealtimeSessionParams) (wsAdapter.RealtimeConn, error) {
		rc := openai.NewRealtimeClient(cfg.OpenAI.APIKey, logger)
		if err := rc.Connect(ctx, model, params); err != nil {
			return nil, err
		}
		return rc, nil
	}
	mediaStream := wsAdapter.NewMediaStreamHandler(registry, dial, cfg.OpenAI.Realtime.Model, cfg.OpenAI.Realtime.CommitInterval, logger)

	// 13. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.CORS))
	app.Use(middleware.NewRateLimit(cfg.RateLimiting))
	app.Use(middleware.CircuitBreaker(logger))

	// Health Check Endpoints
	queueURL := cfg.NATS.URL
	if cfg.Queue.Backend == "rabbitmq" {
		queueURL = cfg.RabbitMQ.URL
	}
	healthService := health.NewService(&health.Config{
		Version:   serviceVersion,
		DB:        sqlDB,
		Cache:     redisCache,
		Firestore: fsClient,
		QueueURL:  queueURL,
	}, logger)
	healthHandler := health.NewFiberHandler(healthService)
	app.Get("/health/live", healthHandler.Health)
	app.Get("/health/ready", healthHandler.Ready)

	// Metrics endpoint for Prometheus
	app.Get("/metrics", func(c *fiber.Ctx) error {
		handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		handler(c.Context())
		return nil
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	webhookHandler := handlers.NewWebhookHandler(conversationService, cfg.Bots.VerifyToken, logger)
	instagramHandler := handlers.NewInstagramHandler(conversationService, igRepo, metaClient, cfg.Bots.VerifyToken, logger)
	botHandler := handlers.NewBotHandler(registry, logger)
	leadHandler := handlers.NewLeadHandler(leadService, logger)
	billingHandler := handlers.NewBillingHandler(billingService, billingService, logger)
	voiceHandler := handlers.NewVoiceHandler(voiceService, registry, cfg.App.PublicURL, logger)
	elevenHandler := handlers.NewElevenHandler(elevenClient, tokenStore, registry, linkSender, cfg.ElevenLabs.WebhookSecret, logger)
	pushHandler := handlers.NewPushHandler(pushService, logger)
	actionHandler := handlers.NewActionHandler(linkSender, logger)

	// Provider callbacks (public, verified by token or signature)
	app.Get("/webhook", webhookHandler.Verify)
	app.Post("/webhook", webhookHandler.Receive)
	app.Get("/instagram/webhook", instagramHandler.Verify)
	app.Post("/instagram/webhook", instagramHandler.Receive)
	app.Get("/instagram/oauth/callback", instagramHandler.OAuthCallback)
	app.Post("/voice", voiceHandler.AnswerCall)
	app.Post("/eleven/webhook", elevenHandler.PostCallWebhook)

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Auth routes (public)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes
	protected := v1.Group("", middleware.AuthRequired(authService))
	protected.Get("/auth/me", authHandler.Me)

	// Bot registry routes. Routes carrying a slug check the caller's
	// bot scope in addition to role permissions.
	slugScoped := middleware.RequireBotAccess("slug")
	botScoped := middleware.RequireBotAccess("bot")
	protected.Get("/bots", botHandler.List)
	protected.Post("/bots", botHandler.Save)
	protected.Get("/bots/:slug", slugScoped, botHandler.Get)
	protected.Put("/bots/:slug", slugScoped, botHandler.Save)
	protected.Delete("/bots/:slug",
		middleware.RequirePermission(rbacService, "bots", "delete"), slugScoped, botHandler.Delete)
	protected.Post("/bots/reload",
		middleware.RequirePermission(rbacService, "bots", "manage"), botHandler.Reload)

	// Leads panel routes
	protected.Get("/leads", leadHandler.List)
	protected.Get("/leads/export", leadHandler.ExportCSV)
	protected.Get("/leads/:bot/:number", botScoped, leadHandler.Get)
	protected.Get("/leads/:bot/:number/chat", botScoped, leadHandler.Chat)
	protected.Put("/leads/:bot/:number/status", botScoped, leadHandler.SaveStatus)
	protected.Put("/leads/:bot/:number/toggle", botScoped, leadHandler.Toggle)
	protected.Delete("/leads/:bot/:number/history", botScoped, leadHandler.ClearHistory)
	protected.Delete("/leads/:bot/:number", botScoped, leadHandler.Delete)
	protected.Post("/leads/:bot/:number/send", botScoped, leadHandler.SendManual)

	// Billing routes
	protected.Get("/billing/clients", billingHandler.Clients)
	protected.Put("/billing/:bot/toggle",
		middleware.RequirePermission(rbacService, "billing", "write"), botScoped, billingHandler.Toggle)
	protected.Get("/billing/:bot/consumption", botScoped, billingHandler.Consumption)
	protected.Get("/billing/:bot/statement", botScoped, billingHandler.Statement)
	protected.Get("/billing/:bot/series", botScoped, billingHandler.UsageSeries)
	protected.Get("/billing/:bot/rates", botScoped, billingHandler.GetRates)
	protected.Put("/billing/:bot/rates",
		middleware.RequirePermission(rbacService, "billing", "write"), botScoped, billingHandler.SetRates)
	protected.Get("/billing/:bot/service-item", botScoped, billingHandler.GetServiceItem)
	protected.Put("/billing/:bot/service-item",
		middleware.RequirePermission(rbacService, "billing", "write"), botScoped, billingHandler.SetServiceItem)
	protected.Post("/billing/track",
		middleware.RequirePermission(rbacService, "billing", "write"), billingHandler.Track)
	protected.Post("/billing/:bot/invoice",
		middleware.RequirePermission(rbacService, "billing", "manage"), botScoped, billingHandler.Invoice)

	// Instagram account routes
	protected.Get("/instagram/users/:id", instagramHandler.Status)
	protected.Put("/instagram/users/:id/toggle", instagramHandler.Toggle)

	// Actions
	protected.Post("/actions/send-link", actionHandler.SendLink)

	// Voice session routes
	protected.Post("/realtime/session", voiceHandler.CreateSession)
	protected.Post("/eleven/session", elevenHandler.CreateSession)

	// WebRTC SDP proxy is gated by its single-use token, not by JWT.
	v1.Post("/eleven/webrtc", elevenHandler.ForwardSDP)

	// Push routes (machine callers with the static API token)
	push := v1.Group("/push", middleware.APITokenRequired(cfg.API.Token))
	push.Get("/health", pushHandler.Health)
	push.Post("/topic", pushHandler.SendToTopic)
	push.Post("/token", pushHandler.SendToToken)
	push.Post("/tokens", pushHandler.SendToTokens)
	push.Post("/send", pushHandler.SendUniversal)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Panel live feed
	app.Get("/ws/updates", websocket.New(func(c *websocket.Conn) {
		bot := c.Query("bot", "*")
		wsHub.AddClient(c, bot)
	}))

	// Twilio Media Streams bridge
	app.Get("/ws/media", websocket.New(func(c *websocket.Conn) {
		mediaStream.HandleMediaStream(c)
	}))

	// 14. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 15. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
