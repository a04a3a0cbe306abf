package twilio

import (
	"encoding/xml"
	"fmt"
)

// Minimal TwiML documents for webhook replies. Only the verbs the
// webhooks actually emit are modeled.

type MessagingResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message,omitempty"`
}

type VoiceResponse struct {
	XMLName xml.Name   `xml:"Response"`
	Say     *SayVerb   `xml:"Say,omitempty"`
	Connect *Connect   `xml:"Connect,omitempty"`
	Hangup  *struct{}  `xml:"Hangup,omitempty"`
}

type SayVerb struct {
	Voice    string `xml:"voice,attr,omitempty"`
	Language string `xml:"language,attr,omitempty"`
	Text     string `xml:",chardata"`
}

type Connect struct {
	Stream *Stream `xml:"Stream,omitempty"`
}

type Stream struct {
	URL        string            `xml:"url,attr"`
	Parameters []StreamParameter `xml:"Parameter,omitempty"`
}

type StreamParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// MessageReply renders a single-message TwiML response. An empty body
// renders an empty <Response/>, which tells Twilio to send nothing.
func MessageReply(body string) ([]byte, error) {
	resp := MessagingResponse{}
	if body != "" {
		resp.Messages = []string{body}
	}
	return render(resp)
}

// StreamReply renders the voice TwiML that bridges the call into the
// media-stream websocket, forwarding both leg numbers as parameters.
func StreamReply(wsURL, toNumber, fromNumber string) ([]byte, error) {
	return GreetAndStream("", "", wsURL, toNumber, fromNumber)
}

// GreetAndStream speaks a greeting before bridging the call. An empty
// greeting skips the Say verb.
func GreetAndStream(greeting, language, wsURL, toNumber, fromNumber string) ([]byte, error) {
	resp := VoiceResponse{
		Connect: &Connect{
			Stream: &Stream{
				URL: wsURL,
				Parameters: []StreamParameter{
					{Name: "to_number", Value: toNumber},
					{Name: "from_number", Value: fromNumber},
				},
			},
		},
	}
	if greeting != "" {
		resp.Say = &SayVerb{Text: greeting, Language: language}
	}
	return render(resp)
}

// RejectReply renders a spoken error followed by a hangup.
func RejectReply(text string) ([]byte, error) {
	resp := VoiceResponse{
		Say:    &SayVerb{Text: text},
		Hangup: &struct{}{},
	}
	return render(resp)
}

func render(v interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
