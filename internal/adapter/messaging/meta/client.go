package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/infrastructure/circuitbreaker"
	"github.com/sundinlabs/multibot/pkg/config"
)

// Graph caps message text at 1000 characters; longer replies are split.
const maxMessageLen = 1000

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Meta Graph API for Instagram messaging and OAuth.
// Outbound calls go through a circuit breaker so a degraded Graph API
// does not pile up goroutines behind slow requests.
type Client struct {
	cfg    config.MetaConfig
	log    *zap.Logger
	client httpDoer
}

func NewClient(cfg config.MetaConfig, log *zap.Logger) *Client {
	if cfg.GraphURL == "" {
		cfg.GraphURL = "https://graph.instagram.com/v21.0"
	}
	settings := circuitbreaker.DefaultHTTPClientSettings("meta-graph")
	settings.Timeout = 15 * time.Second
	return &Client{
		cfg:    cfg,
		log:    log,
		client: circuitbreaker.NewHTTPClientWithSettings(settings, log),
	}
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendMessage delivers a DM through /{page_id}/messages, splitting
// the text into Graph-sized chunks when needed.
func (c *Client) SendMessage(ctx context.Context, pageID, accessToken, recipientID, text string) error {
	if accessToken == "" {
		accessToken = c.cfg.PageToken
	}
	if accessToken == "" {
		return fmt.Errorf("no page access token available")
	}

	for _, chunk := range splitChunks(text, maxMessageLen) {
		if err := c.sendChunk(ctx, pageID, accessToken, recipientID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, pageID, accessToken, recipientID, text string) error {
	payload := map[string]interface{}{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s/messages?access_token=%s",
		strings.TrimRight(c.cfg.GraphURL, "/"), pageID, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send instagram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var gerr graphError
		_ = json.NewDecoder(resp.Body).Decode(&gerr)
		return fmt.Errorf("graph api error: %s (code %d)", gerr.Error.Message, gerr.Error.Code)
	}
	return nil
}

// OAuthResult is what the code exchange yields.
type OAuthResult struct {
	AccessToken string
	UserID      string
	Username    string
}

// ExchangeCode swaps an OAuth authorization code for a long-lived page
// token and resolves the connected account's id and username.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*OAuthResult, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.AppID)
	form.Set("client_secret", c.cfg.AppSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("code", code)

	endpoint := strings.TrimRight(c.cfg.GraphURL, "/") + "/oauth/access_token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange failed: %w", err)
	}
	defer resp.Body.Close()

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		UserID      json.Number `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode oauth response: %w", err)
	}
	if resp.StatusCode >= 400 || tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("oauth exchange rejected (status %d)", resp.StatusCode)
	}

	result := &OAuthResult{
		AccessToken: tokenResp.AccessToken,
		UserID:      tokenResp.UserID.String(),
	}

	// Username lookup is best-effort.
	if me, err := c.fetchProfile(ctx, tokenResp.AccessToken); err == nil {
		result.Username = me.Username
		if result.UserID == "" {
			result.UserID = me.ID
		}
	} else {
		c.log.Warn("failed to fetch instagram profile", zap.Error(err))
	}
	return result, nil
}

type profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (c *Client) fetchProfile(ctx context.Context, accessToken string) (*profile, error) {
	endpoint := fmt.Sprintf("%s/me?fields=id,username&access_token=%s",
		strings.TrimRight(c.cfg.GraphURL, "/"), url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var p profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("profile lookup rejected (status %d)", resp.StatusCode)
	}
	return &p, nil
}

// splitChunks cuts text into runs of at most max runes, preferring to
// break on whitespace near the limit.
func splitChunks(text string, max int) []string {
	runes := []rune(text)
	if len(runes) <= max {
		return []string{text}
	}
	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= max {
			chunks = append(chunks, string(runes))
			break
		}
		cut := max
		for i := max; i > max/2; i-- {
			if runes[i-1] == ' ' || runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), " \n"))
		runes = runes[cut:]
	}
	return chunks
}
