package domain

import "time"

// UsageEvent is what the LLM path publishes after each completion.
// The billing worker folds these into the daily ledger.
type UsageEvent struct {
	Bot          string    `json:"bot"`
	Model        string    `json:"model"`
	InputTokens  int64     `json:"input_tokens"`
	OutputTokens int64     `json:"output_tokens"`
	At           time.Time `json:"at"`
}

// ModelCount is the per-model slice of one day's usage.
type ModelCount struct {
	Requests     int64 `json:"requests" firestore:"requests"`
	InputTokens  int64 `json:"input_tokens" firestore:"input_tokens"`
	OutputTokens int64 `json:"output_tokens" firestore:"output_tokens"`
}

// DailyUsage is the billing/{bot}/days/{yyyy-mm-dd} aggregate.
type DailyUsage struct {
	Bot          string                `json:"bot" firestore:"-"`
	Day          string                `json:"day" firestore:"-"`
	Requests     int64                 `json:"requests" firestore:"requests"`
	InputTokens  int64                 `json:"input_tokens" firestore:"input_tokens"`
	OutputTokens int64                 `json:"output_tokens" firestore:"output_tokens"`
	ModelCounts  map[string]ModelCount `json:"model_counts" firestore:"model_counts"`
}

// Rates are the per-1k-token prices applied to a bot's usage.
type Rates struct {
	InputPerK  float64 `json:"input_per_k" firestore:"input_per_k"`
	OutputPerK float64 `json:"output_per_k" firestore:"output_per_k"`
}

// ServiceItem is the fixed monthly line on a statement.
type ServiceItem struct {
	Enabled bool    `json:"enabled" firestore:"enabled"`
	Amount  float64 `json:"amount" firestore:"amount"`
	Label   string  `json:"label" firestore:"label"`
}

// UsagePoint is one day of a statement's time series.
type UsagePoint struct {
	Day          string  `json:"day"`
	Requests     int64   `json:"requests"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Statement is a date-range billing rollup for one bot.
type Statement struct {
	Bot           string       `json:"bot"`
	From          string       `json:"from"`
	To            string       `json:"to"`
	Requests      int64        `json:"requests"`
	InputTokens   int64        `json:"input_tokens"`
	OutputTokens  int64        `json:"output_tokens"`
	OpenAICost    float64      `json:"openai_cost"`
	TwilioCount   int64        `json:"twilio_count"`
	TwilioCost    float64      `json:"twilio_cost"`
	ServiceItem   *ServiceItem `json:"service_item,omitempty"`
	Subtotal      float64      `json:"subtotal"`
	Total         float64      `json:"total"`
	Series        []UsagePoint `json:"series,omitempty"`
	TwilioPerDay  map[string]float64 `json:"twilio_per_day,omitempty"`
}

// BotStatus is the per-bot master switch stored in the ledger.
type BotStatus struct {
	Bot     string `json:"bot" firestore:"-"`
	Enabled bool   `json:"enabled" firestore:"enabled"`
}
