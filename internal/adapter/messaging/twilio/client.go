package twilio

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/pkg/config"
)

// Client sends SMS and WhatsApp messages through Twilio. Each bot card
// can carry its own account credentials; cards without them fall back
// to the account configured at the process level.
type Client struct {
	defaults config.TwilioConfig
	log      *zap.Logger

	mu      sync.Mutex
	clients map[string]*twilio.RestClient
}

func NewClient(cfg config.TwilioConfig, log *zap.Logger) *Client {
	return &Client{
		defaults: cfg,
		log:      log,
		clients:  make(map[string]*twilio.RestClient),
	}
}

// resolve fills missing card credentials from the process defaults.
func (c *Client) resolve(creds domain.TwilioCreds) domain.TwilioCreds {
	if creds.AccountSID == "" || creds.AuthToken == "" {
		creds.AccountSID = c.defaults.AccountSID
		creds.AuthToken = c.defaults.AuthToken
	}
	if creds.SMSFrom == "" {
		creds.SMSFrom = c.defaults.SMSFrom
	}
	if creds.WhatsAppFrom == "" {
		creds.WhatsAppFrom = c.defaults.WhatsAppFrom
	}
	return creds
}

func (c *Client) rest(creds domain.TwilioCreds) (*twilio.RestClient, error) {
	if creds.AccountSID == "" || creds.AuthToken == "" {
		return nil, fmt.Errorf("twilio credentials not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if rc, ok := c.clients[creds.AccountSID]; ok {
		return rc, nil
	}
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: creds.AccountSID,
		Password: creds.AuthToken,
	})
	c.clients[creds.AccountSID] = rc
	return rc, nil
}

func (c *Client) SendWhatsApp(ctx context.Context, creds domain.TwilioCreds, to, body string) error {
	creds = c.resolve(creds)
	rc, err := c.rest(creds)
	if err != nil {
		return err
	}

	from := creds.WhatsAppFrom
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := rc.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	c.log.Debug("whatsapp message sent",
		zap.Stringp("sid", msg.Sid),
		zap.String("to", to))
	return nil
}

func (c *Client) SendSMS(ctx context.Context, creds domain.TwilioCreds, to, body string) error {
	creds = c.resolve(creds)
	rc, err := c.rest(creds)
	if err != nil {
		return err
	}
	if creds.SMSFrom == "" {
		return fmt.Errorf("sms sender number not configured")
	}

	params := &openapi.CreateMessageParams{}
	params.SetFrom(creds.SMSFrom)
	params.SetTo(to)
	params.SetBody(body)

	msg, err := rc.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	c.log.Debug("sms sent",
		zap.Stringp("sid", msg.Sid),
		zap.String("to", to))
	return nil
}

// MessageCosts sums delivered-message volume and carrier spend between
// from and to. Prices come back negative from the API, so they are
// flipped before aggregation. perDay is keyed yyyy-mm-dd.
func (c *Client) MessageCosts(ctx context.Context, creds domain.TwilioCreds, from, to time.Time) (int64, float64, map[string]float64, error) {
	creds = c.resolve(creds)
	rc, err := c.rest(creds)
	if err != nil {
		return 0, 0, nil, err
	}

	params := &openapi.ListMessageParams{}
	params.SetDateSentAfter(from)
	params.SetDateSentBefore(to)
	params.SetPageSize(1000)

	msgs, err := rc.Api.ListMessage(params)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var count int64
	var total float64
	perDay := make(map[string]float64)
	for _, m := range msgs {
		count++
		if m.Price == nil || *m.Price == "" {
			continue
		}
		price, err := strconv.ParseFloat(*m.Price, 64)
		if err != nil {
			continue
		}
		if price < 0 {
			price = -price
		}
		total += price
		if m.DateSent != nil {
			if ts, err := time.Parse(time.RFC1123Z, *m.DateSent); err == nil {
				perDay[ts.UTC().Format("2006-01-02")] += price
			}
		}
	}
	return count, total, perDay, nil
}
