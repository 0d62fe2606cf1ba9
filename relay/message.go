package relay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Inbound control message kinds.
const (
	MsgSetLanguage = "set_language"
	MsgAudioFile   = "audio_file"
	MsgStop        = "stop"
)

// Inbound is a decoded client control message. Type discriminates which
// of the other fields are meaningful.
type Inbound struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
	Data     string `json:"data,omitempty"`
	Format   string `json:"format,omitempty"`
}

// ParseInbound decodes a text frame into a control message. Unknown
// types are returned as-is; the session dispatch rejects them with an
// error event rather than dropping them silently.
func ParseInbound(data []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, fmt.Errorf("malformed message: %w", err)
	}
	if msg.Type == "" {
		return Inbound{}, fmt.Errorf("message missing type")
	}
	return msg, nil
}

// AudioBytes decodes the base64 payload of an audio_file message,
// tolerating the data-URL prefix the mobile recorder sometimes adds.
func (m Inbound) AudioBytes() ([]byte, error) {
	data := m.Data
	if strings.HasPrefix(data, "data:") {
		if idx := strings.IndexByte(data, ','); idx >= 0 {
			data = data[idx+1:]
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 audio: %w", err)
	}
	return decoded, nil
}

// Outbound event kinds.
const (
	EventConnected       = "connected"
	EventLanguageChanged = "language_changed"
	EventProcessing      = "processing"
	EventPartial         = "partial"
	EventFinal           = "final"
	EventError           = "error"
)

// Event is one transcript or status message pushed to the client.
// Immutable once constructed.
type Event struct {
	Type     string `json:"type"`
	Message  string `json:"message,omitempty"`
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`
}

func Connected() Event {
	return Event{
		Type:    EventConnected,
		Message: "transcription server ready",
	}
}

func LanguageChanged(lang string) Event {
	return Event{Type: EventLanguageChanged, Language: lang}
}

func Processing(message string) Event {
	return Event{Type: EventProcessing, Message: message}
}

func Partial(text string) Event {
	return Event{Type: EventPartial, Text: text}
}

func Final(text, language string) Event {
	return Event{Type: EventFinal, Text: text, Language: language}
}

func Error(message string) Event {
	return Event{Type: EventError, Message: message}
}
