package dialog

import (
	"regexp"
	"strings"
)

// Keyword sets cover Spanish and English, the two languages the bots
// field in production traffic.

var scheduleOfferPat = regexp.MustCompile(`(?i)\b(enlace|link|calendar|calendario|agendar|agenda|reservar|reserva|cita|schedule|book|appointment|meeting|call)\b`)

var affirmatives = []string{
	"si", "sí", "ok", "okay", "dale", "va", "claro", "por favor",
	"hagamoslo", "hagámoslo", "perfecto", "de una",
	"yes", "yep", "yeah", "sure", "please",
}

var negatives = []string{
	"no", "nop", "no gracias", "ahora no", "luego", "después", "despues", "not now",
}

var politeClosures = []string{
	"gracias", "muchas gracias", "ok gracias", "listo gracias", "perfecto gracias",
	"estamos en contacto", "por ahora está bien", "por ahora esta bien",
	"luego te escribo", "luego hablamos", "hasta luego", "buen día", "buen dia",
	"buenas noches", "nos vemos", "chao", "bye", "eso es todo", "todo bien gracias",
}

var scheduledConfirmations = []string{
	"ya agende", "ya agendé", "agende", "agendé", "ya programe", "ya programé",
	"ya agendado", "agendado", "confirmé", "confirmado", "listo",
	"done", "booked", "i booked", "i scheduled", "scheduled",
}

var appWords = []string{"app", "aplicación", "aplicacion", "ios", "android", "play store", "app store"}

var downloadWords = []string{"descargar", "download", "bajar", "instalar", "link", "enlace"}

var trailingPunct = regexp.MustCompile(`[.,;:!?]+$`)

// WantsLink reports whether the text talks about scheduling. Applied
// to bot replies to detect an offered link.
func WantsLink(text string) bool {
	return scheduleOfferPat.MatchString(text)
}

// WantsAppDownload reports whether the text asks for the mobile app.
func WantsAppDownload(text string) bool {
	t := strings.ToLower(text)
	if strings.Contains(t, "descargar app") || strings.Contains(t, "download app") {
		return true
	}
	return containsAny(t, appWords) && containsAny(t, downloadWords)
}

// IsAffirmative matches a bare yes or a yes-prefixed sentence.
func IsAffirmative(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	return matchOrPrefix(t, affirmatives)
}

// IsNegative matches only a bare refusal, trailing punctuation aside.
func IsNegative(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	t = trailingPunct.ReplaceAllString(t, "")
	t = strings.Join(strings.Fields(t), " ")
	for _, n := range negatives {
		if t == n {
			return true
		}
	}
	return false
}

// IsScheduledConfirmation matches "already booked" phrasings anywhere
// in the text.
func IsScheduledConfirmation(text string) bool {
	t := strings.ToLower(text)
	if t == "" {
		return false
	}
	for _, k := range scheduledConfirmations {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// IsPoliteClosure matches a goodbye or thanks that should end the turn.
func IsPoliteClosure(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	return matchOrPrefix(t, politeClosures)
}

// MatchesAnyKeyword reports whether any card keyword appears in the text.
func MatchesAnyKeyword(text string, keywords []string) bool {
	t := strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(t, k) {
			return true
		}
	}
	return false
}

func matchOrPrefix(t string, set []string) bool {
	for _, s := range set {
		if t == s || strings.HasPrefix(t, s+" ") {
			return true
		}
	}
	return false
}

func containsAny(t string, words []string) bool {
	for _, w := range words {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}
