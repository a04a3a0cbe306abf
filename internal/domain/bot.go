package domain

// BotCard is the per-client "tarjeta inteligente": one JSON file per bot
// holding persona, prompts, style, channel wiring and credentials.
type BotCard struct {
	Slug         string   `json:"slug,omitempty"`
	Name         string   `json:"name"`
	BusinessName string   `json:"business_name,omitempty"`
	Number       string   `json:"number,omitempty"` // e.g. whatsapp:+14155550100
	Description  string   `json:"description,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Prompt       string   `json:"prompt,omitempty"`
	Model        string   `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Language     string   `json:"language,omitempty"`

	Greeting      string   `json:"greeting,omitempty"`
	IntroKeywords []string `json:"intro_keywords,omitempty"`

	Style    StyleConfig    `json:"style,omitempty"`
	Agenda   AgendaConfig   `json:"agenda,omitempty"`
	Links    LinksCard      `json:"links,omitempty"`
	Policies PoliciesCard   `json:"policies,omitempty"`
	Channels ChannelsConfig `json:"channels,omitempty"`
	Booking  BookingConfig  `json:"booking,omitempty"`
	Realtime RealtimeCard   `json:"realtime,omitempty"`
	Twilio   TwilioCreds    `json:"twilio,omitempty"`
	Eleven   ElevenCard     `json:"eleven,omitempty"`

	// Flat aliases kept for older card files.
	BookingURL     string `json:"booking_url,omitempty"`
	AppDownloadURL string `json:"app_download_url,omitempty"`
}

type LinksCard struct {
	AppMessage     string `json:"app_message,omitempty"`
	AppDownloadURL string `json:"app_download_url,omitempty"`
}

type PoliciesCard struct {
	PoliteClosureMessage string `json:"polite_closure_message,omitempty"`
}

// SystemMessage is the prompt seeding every model session.
func (b *BotCard) SystemMessage() string {
	if b.SystemPrompt != "" {
		return b.SystemPrompt
	}
	return b.Prompt
}

type StyleConfig struct {
	ShortReplies   *bool    `json:"short_replies,omitempty"`
	MaxSentences   int      `json:"max_sentences,omitempty"`
	AlwaysQuestion bool     `json:"always_question,omitempty"`
	Probes         []string `json:"probes,omitempty"`
}

// Short defaults to true, matching older cards that never set it.
func (s StyleConfig) Short() bool {
	return s.ShortReplies == nil || *s.ShortReplies
}

type AgendaConfig struct {
	Enabled         *bool    `json:"enabled,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	ConfirmQuestion string   `json:"confirm_question,omitempty"`
	DeclineMessage  string   `json:"decline_message,omitempty"`
	ClosingMessage  string   `json:"closing_message,omitempty"`
	LinkMessage     string   `json:"link_message,omitempty"`
}

type ChannelsConfig struct {
	WhatsApp  WhatsAppChannel  `json:"whatsapp,omitempty"`
	Instagram InstagramChannel `json:"instagram,omitempty"`
	Voice     VoiceChannel     `json:"voice,omitempty"`
}

type WhatsAppChannel struct {
	Number  string `json:"number,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type InstagramChannel struct {
	PageID      string `json:"page_id,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

type VoiceChannel struct {
	Number       string `json:"number,omitempty"`
	Greeting     string `json:"greeting,omitempty"`
	Voice        string `json:"voice,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

type BookingConfig struct {
	URL         string `json:"url,omitempty"`
	CalendarURL string `json:"calendar_url,omitempty"`
}

type RealtimeCard struct {
	Model        string   `json:"model,omitempty"`
	Voice        string   `json:"voice,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Modalities   []string `json:"modalities,omitempty"`
}

type TwilioCreds struct {
	AccountSID   string `json:"account_sid,omitempty"`
	AuthToken    string `json:"auth_token,omitempty"`
	SMSFrom      string `json:"sms_from,omitempty"`
	WhatsAppFrom string `json:"whatsapp_from,omitempty"`
}

type ElevenCard struct {
	AgentID string `json:"agent_id,omitempty"`
}

// AgendaEnabled defaults to true when the card does not say.
func (b *BotCard) AgendaEnabled() bool {
	return b.Agenda.Enabled == nil || *b.Agenda.Enabled
}

// EffectiveBookingURL walks the card's URL candidates in priority order.
func (b *BotCard) EffectiveBookingURL() string {
	for _, u := range []string{b.Booking.URL, b.Booking.CalendarURL, b.BookingURL} {
		if IsHTTPURL(u) {
			return u
		}
	}
	return ""
}

// EffectiveAppURL walks the app-download URL candidates.
func (b *BotCard) EffectiveAppURL() string {
	for _, u := range []string{b.Links.AppDownloadURL, b.AppDownloadURL} {
		if IsHTTPURL(u) {
			return u
		}
	}
	return ""
}

func IsHTTPURL(u string) bool {
	return len(u) >= 8 && (u[:7] == "http://" || u[:8] == "https://")
}
