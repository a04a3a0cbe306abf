package bots

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

var (
	ErrNotFound    = fmt.Errorf("bot not found")
	ErrInvalidSlug = fmt.Errorf("invalid bot slug")

	slugClean = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
)

// Registry loads every bots/*.json card into memory and serves lookups
// by slug, channel number, name and Instagram page id. Writes go
// through a temp file and rename so a crash never leaves a half card.
type Registry struct {
	dir string
	log *zap.Logger

	mu    sync.RWMutex
	cards map[string]*domain.BotCard // by slug
}

func NewRegistry(dir string, log *zap.Logger) (*Registry, error) {
	r := &Registry{
		dir:   dir,
		log:   log,
		cards: make(map[string]*domain.BotCard),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

var _ ports.BotRegistry = (*Registry)(nil)

// Reload re-reads every card file from disk.
func (r *Registry) Reload() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Warn("bots directory does not exist, starting empty", zap.String("dir", r.dir))
			return nil
		}
		return fmt.Errorf("failed to read bots dir: %w", err)
	}

	cards := make(map[string]*domain.BotCard)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		loaded, err := loadCardFile(path)
		if err != nil {
			r.log.Warn("skipping unreadable bot card",
				zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		for _, c := range loaded {
			if c.Slug == "" {
				c.Slug = strings.TrimSuffix(e.Name(), ".json")
			}
			applyDefaults(c)
			cards[c.Slug] = c
		}
	}

	r.mu.Lock()
	r.cards = cards
	r.mu.Unlock()

	r.log.Info("bot cards loaded", zap.Int("count", len(cards)), zap.String("dir", r.dir))
	return nil
}

// loadCardFile accepts both card shapes: a flat slug document and a map
// keyed by channel number ("whatsapp:+1...").
func loadCardFile(path string) ([]*domain.BotCard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var flat domain.BotCard
	if err := json.Unmarshal(raw, &flat); err == nil && (flat.Slug != "" || flat.Name != "") {
		return []*domain.BotCard{&flat}, nil
	}

	var keyed map[string]*domain.BotCard
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("unrecognized card format: %w", err)
	}
	var out []*domain.BotCard
	for number, c := range keyed {
		if c == nil {
			continue
		}
		if c.Number == "" {
			c.Number = number
		}
		// Keyed files hold many bots, so the filename stem cannot
		// name them. Derive a distinct slug per entry.
		if c.Slug == "" {
			if c.Name != "" {
				c.Slug = slugFromName(c.Name)
			}
			if c.Slug == "" {
				c.Slug = slugFromName(number)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// slugFromName lowercases and hyphenates a display name into a slug.
func slugFromName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	return slugClean.ReplaceAllString(s, "")
}

func applyDefaults(c *domain.BotCard) {
	if len(c.Realtime.Modalities) == 0 {
		c.Realtime.Modalities = []string{"audio", "text"}
	}
	if c.Realtime.Instructions == "" {
		c.Realtime.Instructions = c.SystemMessage()
	}
	if c.Style.MaxSentences == 0 {
		c.Style.MaxSentences = 2
	}
}

func (r *Registry) All() []*domain.BotCard {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.BotCard, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

func (r *Registry) Get(slug string) (*domain.BotCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cards[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// FindByNumber matches the dialed/written channel number against each
// card, comparing canonical E.164 forms.
func (r *Registry) FindByNumber(number string) (*domain.BotCard, error) {
	want := CanonicalNumber(number)
	if want == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cards {
		for _, n := range []string{c.Number, c.Channels.WhatsApp.Number, c.Channels.Voice.Number} {
			if n != "" && CanonicalNumber(n) == want {
				return c, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (r *Registry) FindByName(name string) (*domain.BotCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cards {
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.Slug, name) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *Registry) FindByPageID(pageID string) (*domain.BotCard, error) {
	if pageID == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cards {
		if c.Channels.Instagram.PageID == pageID {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

// Save writes the card atomically and refreshes the in-memory copy.
func (r *Registry) Save(card *domain.BotCard) error {
	path, err := r.cardPath(card.Slug)
	if err != nil {
		return err
	}

	applyDefaults(card)
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bot card: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bots dir: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, ".card-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp card: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp card: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp card: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace card file: %w", err)
	}

	r.mu.Lock()
	r.cards[card.Slug] = card
	r.mu.Unlock()

	r.log.Info("bot card saved", zap.String("slug", card.Slug))
	return nil
}

func (r *Registry) Delete(slug string) error {
	path, err := r.cardPath(slug)
	if err != nil {
		return err
	}

	r.mu.Lock()
	_, ok := r.cards[slug]
	delete(r.cards, slug)
	r.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove card file: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	r.log.Info("bot card deleted", zap.String("slug", slug))
	return nil
}

// cardPath sanitizes the slug and rejects anything that would escape
// the bots directory.
func (r *Registry) cardPath(slug string) (string, error) {
	clean := slugClean.ReplaceAllString(slug, "")
	if clean == "" || clean != slug || strings.Contains(clean, "..") {
		return "", ErrInvalidSlug
	}
	return filepath.Join(r.dir, clean+".json"), nil
}

// CanonicalNumber strips channel prefixes and normalizes a US 10-digit
// number to E.164 (+1...). Returns "" for unparseable input.
func CanonicalNumber(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range []string{"whatsapp:", "tel:", "sip:", "client:"} {
		if strings.HasPrefix(strings.ToLower(s), p) {
			s = s[len(p):]
			break
		}
	}

	var digits strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	case len(d) > 11:
		return "+" + d
	case d == "":
		return ""
	default:
		return "+" + d
	}
}
