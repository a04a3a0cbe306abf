package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without APP_ prefix for Docker/VM deploys
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("firestore.project_id", "GOOGLE_CLOUD_PROJECT", "FIRESTORE_PROJECT_ID")
	viper.BindEnv("firestore.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("rabbitmq.url", "RABBITMQ_URL", "APP_RABBITMQ_URL")
	viper.BindEnv("jwt.secret", "JWT_SECRET", "APP_JWT_SECRET")
	viper.BindEnv("api.token", "API_TOKEN", "APP_API_TOKEN")
	viper.BindEnv("bots.dir", "BOTS_DIR")
	viper.BindEnv("bots.verify_token", "VERIFY_TOKEN", "META_VERIFY_TOKEN")
	viper.BindEnv("bots.status_url", "BOT_STATUS_URL")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("openai.realtime.model", "OPENAI_REALTIME_MODEL")
	viper.BindEnv("openai.realtime.voice", "OPENAI_REALTIME_VOICE")
	viper.BindEnv("openai.realtime.vad_hold_ms", "REALTIME_VAD_HOLD_MS")
	viper.BindEnv("openai.realtime.vad_threshold", "REALTIME_VAD_THRESHOLD")
	viper.BindEnv("openai.realtime.vad_min_voice_ms", "REALTIME_VAD_MIN_VOICE_MS")
	viper.BindEnv("elevenlabs.api_key", "ELEVENLABS_API_KEY")
	viper.BindEnv("elevenlabs.agent_id", "ELEVENLABS_AGENT_ID")
	viper.BindEnv("elevenlabs.webhook_secret", "ELEVENLABS_WEBHOOK_SECRET")
	viper.BindEnv("twilio.account_sid", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("twilio.auth_token", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("twilio.sms_from", "TWILIO_SMS_FROM")
	viper.BindEnv("twilio.whatsapp_from", "TWILIO_WHATSAPP_FROM")
	viper.BindEnv("meta.app_id", "META_APP_ID", "IG_APP_ID")
	viper.BindEnv("meta.app_secret", "META_APP_SECRET", "IG_APP_SECRET")
	viper.BindEnv("meta.page_token", "META_PAGE_TOKEN", "IG_PAGE_TOKEN")
	viper.BindEnv("links.booking_url", "GOOGLE_CALENDAR_BOOKING_URL")
	viper.BindEnv("links.app_download_url", "APP_DOWNLOAD_URL")
	viper.BindEnv("billing.input_per_k", "OPENAI_PRICE_IN_PER_1K")
	viper.BindEnv("billing.output_per_k", "OPENAI_PRICE_OUT_PER_1K")
	viper.BindEnv("billing.stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("notification.email.api_key", "SENDGRID_API_KEY")
	viper.BindEnv("notification.push.server_key", "FCM_SERVER_KEY")
	viper.BindEnv("notification.push.api_token", "PUSH_API_TOKEN")
	viper.BindEnv("vault.address", "VAULT_ADDR")
	viper.BindEnv("vault.token", "VAULT_TOKEN")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("app.public_url", "PUBLIC_URL", "APP_PUBLIC_URL")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// no config file is fine, env vars carry the load
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("queue.backend", "nats")
	viper.SetDefault("bots.dir", "./bots")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.7)
	viper.SetDefault("openai.realtime.model", "gpt-4o-realtime-preview")
	viper.SetDefault("openai.realtime.voice", "alloy")
	viper.SetDefault("openai.realtime.vad_hold_ms", 1200)
	viper.SetDefault("openai.realtime.vad_threshold", 0.5)
	viper.SetDefault("openai.realtime.vad_min_voice_ms", 0)
	viper.SetDefault("openai.realtime.commit_interval", "1200ms")
	viper.SetDefault("elevenlabs.token_ttl", "120s")
	viper.SetDefault("meta.graph_url", "https://graph.facebook.com/v21.0")
	viper.SetDefault("meta.status_ttl", "20s")
	viper.SetDefault("links.resend_cooldown", "10m")
	viper.SetDefault("billing.input_per_k", 0.005)
	viper.SetDefault("billing.output_per_k", 0.015)
	viper.SetDefault("billing.service_item_amount", 200)
	viper.SetDefault("billing.service_item_label", "Servicio mensual")
	viper.SetDefault("billing.stripe.currency", "usd")
}
