package dialog

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"regexp"
	"strings"

	"github.com/sundinlabs/multibot/internal/domain"
)

var (
	sentenceSplit = regexp.MustCompile(`([.!?])\s+`)
	spaceCollapse = regexp.MustCompile(`\s+`)
	mdLink        = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	bookingVar    = regexp.MustCompile(`(?i)\{\{?\s*GOOGLE_CALENDAR_BOOKING_URL\s*\}?\}`)
)

// SplitSentences cuts text on sentence punctuation; a single run-on
// over 280 chars gets a hard split so short-reply mode still bites.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	marked := sentenceSplit.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	if len(parts) == 1 && len(text) > 280 {
		parts = []string{strings.TrimSpace(text[:200]), strings.TrimSpace(text[200:])}
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplyStyle caps the reply at the card's sentence limit. Replies that
// carry a URL are left whole so the link never gets cut off.
func ApplyStyle(card *domain.BotCard, text string) string {
	if text == "" || !card.Style.Short() {
		return text
	}
	if strings.Contains(text, "http://") || strings.Contains(text, "https://") {
		return text
	}
	max := card.Style.MaxSentences
	if max <= 0 {
		max = 2
	}
	sents := SplitSentences(text)
	if len(sents) > max {
		sents = sents[:max]
	}
	return strings.TrimSpace(strings.Join(sents, " "))
}

// NextProbe picks a random configured probe question.
func NextProbe(card *domain.BotCard) string {
	var probes []string
	for _, p := range card.Style.Probes {
		if p = strings.TrimSpace(p); p != "" {
			probes = append(probes, p)
		}
	}
	if len(probes) == 0 {
		return ""
	}
	return probes[rand.Intn(len(probes))]
}

// EnsureQuestion appends a probe when the reply carries no question and
// the card demands one.
func EnsureQuestion(card *domain.BotCard, text string, force bool) string {
	txt := strings.TrimSpace(spaceCollapse.ReplaceAllString(text, " "))
	if !force || strings.Contains(txt, "?") {
		return txt
	}
	if !strings.HasSuffix(txt, ".") && !strings.HasSuffix(txt, "!") && !strings.HasSuffix(txt, "…") {
		txt += "."
	}
	if probe := NextProbe(card); probe != "" {
		return strings.TrimSpace(txt + " " + probe)
	}
	return txt
}

// FlattenMarkdownLinks turns [label](url) into "label url" so WhatsApp
// renders a tappable link.
func FlattenMarkdownLinks(text string) string {
	return mdLink.ReplaceAllString(text, "$1 $2")
}

// SubstituteBookingURL expands the {{GOOGLE_CALENDAR_BOOKING_URL}}
// template in card messages.
func SubstituteBookingURL(text, url string) string {
	return bookingVar.ReplaceAllString(text, url)
}

// ComposeWithLink appends the link when it is a real URL.
func ComposeWithLink(prefix, link string) string {
	prefix = strings.TrimSpace(prefix)
	if domain.IsHTTPURL(link) {
		return strings.TrimSpace(prefix + " " + link)
	}
	return prefix
}

// HashText is the normalized reply fingerprint used for repeat detection.
func HashText(text string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:])
}

// BreakRepetition appends the first probe when the model repeats its
// previous reply verbatim.
func BreakRepetition(card *domain.BotCard, reply, lastHash string) string {
	if lastHash == "" || HashText(reply) != lastHash {
		return reply
	}
	if len(card.Style.Probes) == 0 {
		return reply
	}
	probe := strings.TrimSpace(card.Style.Probes[0])
	if probe == "" || strings.Contains(reply, probe) {
		return reply
	}
	if !strings.HasSuffix(reply, ".") && !strings.HasSuffix(reply, "!") &&
		!strings.HasSuffix(reply, "…") && !strings.HasSuffix(reply, "?") && !strings.HasSuffix(reply, "¿") {
		reply += "."
	}
	return strings.TrimSpace(reply + " " + probe)
}
