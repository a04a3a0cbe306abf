package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Firestore      FirestoreConfig      `mapstructure:"firestore"`
	Redis          RedisConfig          `mapstructure:"redis"`
	NATS           NATSConfig           `mapstructure:"nats"`
	RabbitMQ       RabbitMQConfig       `mapstructure:"rabbitmq"`
	Queue          QueueConfig          `mapstructure:"queue"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	API            APIConfig            `mapstructure:"api"`
	Bots           BotsConfig           `mapstructure:"bots"`
	OpenAI         OpenAIConfig         `mapstructure:"openai"`
	ElevenLabs     ElevenLabsConfig     `mapstructure:"elevenlabs"`
	Twilio         TwilioConfig         `mapstructure:"twilio"`
	Meta           MetaConfig           `mapstructure:"meta"`
	Links          LinksConfig          `mapstructure:"links"`
	Billing        BillingConfig        `mapstructure:"billing"`
	Notification   NotificationConfig   `mapstructure:"notification"`
	Vault          VaultConfig          `mapstructure:"vault"`
	OpenTelemetry  OpenTelemetryConfig  `mapstructure:"opentelemetry"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	RateLimiting   RateLimitingConfig   `mapstructure:"rate_limiting"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	CORS           CORSConfig           `mapstructure:"cors"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	PublicURL   string `mapstructure:"public_url"`
}

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type FirestoreConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

// Queue selects the message queue backend: "nats" (default) or "rabbitmq".
type QueueConfig struct {
	Backend string `mapstructure:"backend"`
}

type JWTConfig struct {
	Secret               string        `mapstructure:"secret"`
	AccessTokenDuration  time.Duration `mapstructure:"access_token_duration"`
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration"`
	Issuer               string        `mapstructure:"issuer"`
	Audience             string        `mapstructure:"audience"`
}

// API covers machine-to-machine access to panel endpoints.
type APIConfig struct {
	Token string `mapstructure:"token"`
}

type BotsConfig struct {
	Dir            string `mapstructure:"dir"`
	DefaultBot     string `mapstructure:"default_bot"`
	DefaultIGPage  string `mapstructure:"default_ig_page"`
	VerifyToken    string `mapstructure:"verify_token"`
	RemoteStatuses bool   `mapstructure:"remote_statuses"`
	StatusURL      string `mapstructure:"status_url"`
}

type OpenAIConfig struct {
	APIKey        string            `mapstructure:"api_key"`
	Model         string            `mapstructure:"model"`
	Temperature   float64           `mapstructure:"temperature"`
	Realtime      RealtimeConfig    `mapstructure:"realtime"`
	PricesPerK    map[string]TokenPrice `mapstructure:"prices_per_k"`
}

type TokenPrice struct {
	Input  float64 `mapstructure:"input"`
	Output float64 `mapstructure:"output"`
}

type RealtimeConfig struct {
	Model            string  `mapstructure:"model"`
	Voice            string  `mapstructure:"voice"`
	VADHoldMs        int     `mapstructure:"vad_hold_ms"`
	VADThreshold     float64 `mapstructure:"vad_threshold"`
	VADMinVoiceMs    int     `mapstructure:"vad_min_voice_ms"`
	CommitInterval   time.Duration `mapstructure:"commit_interval"`
}

type ElevenLabsConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	AgentID       string        `mapstructure:"agent_id"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	WebhookSecret string        `mapstructure:"webhook_secret"`
}

type TwilioConfig struct {
	AccountSID   string `mapstructure:"account_sid"`
	AuthToken    string `mapstructure:"auth_token"`
	SMSFrom      string `mapstructure:"sms_from"`
	WhatsAppFrom string `mapstructure:"whatsapp_from"`
}

type MetaConfig struct {
	AppID       string `mapstructure:"app_id"`
	AppSecret   string `mapstructure:"app_secret"`
	PageToken   string `mapstructure:"page_token"`
	GraphURL    string `mapstructure:"graph_url"`
	RedirectURI string `mapstructure:"redirect_uri"`
	StatusTTL   time.Duration `mapstructure:"status_ttl"`
}

type LinksConfig struct {
	BookingURL     string        `mapstructure:"booking_url"`
	AppDownloadURL string        `mapstructure:"app_download_url"`
	ResendCooldown time.Duration `mapstructure:"resend_cooldown"`
}

type BillingConfig struct {
	InputPerK          float64 `mapstructure:"input_per_k"`
	OutputPerK         float64 `mapstructure:"output_per_k"`
	ServiceItemAmount  float64 `mapstructure:"service_item_amount"`
	ServiceItemLabel   string  `mapstructure:"service_item_label"`
	Stripe             StripeConfig `mapstructure:"stripe"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Currency  string `mapstructure:"currency"`
	Enabled   bool   `mapstructure:"enabled"`
}

type NotificationConfig struct {
	Email EmailConfig `mapstructure:"email"`
	Push  PushConfig  `mapstructure:"push"`
}

type EmailConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type PushConfig struct {
	Provider  string `mapstructure:"provider"`
	ServerKey string `mapstructure:"server_key"`
	APIToken  string `mapstructure:"api_token"`
}

type VaultConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Mount   string `mapstructure:"mount"`
	Path    string `mapstructure:"path"`
}

type OpenTelemetryConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Jaeger      JaegerConfig      `mapstructure:"jaeger"`
	ServiceName string            `mapstructure:"service_name"`
	Attributes  map[string]string `mapstructure:"attributes"`
}

type JaegerConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplerType  string  `mapstructure:"sampler_type"`
	SamplerParam float64 `mapstructure:"sampler_param"`
}

type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level    string          `mapstructure:"level"`
	Format   string          `mapstructure:"format"`
	Output   string          `mapstructure:"output"`
	Sampling LoggingSampling `mapstructure:"sampling"`
}

type LoggingSampling struct {
	Enabled    bool `mapstructure:"enabled"`
	Initial    int  `mapstructure:"initial"`
	Thereafter int  `mapstructure:"thereafter"`
}

type RateLimitingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
	ByUser      bool          `mapstructure:"by_user"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      int           `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}
