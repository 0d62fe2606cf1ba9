package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"auralis/relay"
)

// TranscribeCmd is a command-line stand-in for the mobile recorder: it
// sends one audio file over the relay protocol and prints the events
// that come back.
var TranscribeCmd = &cobra.Command{
	Use:   "transcribe <audio-file>",
	Short: "Send an audio file to the transcription relay",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		server, _ := cmd.Flags().GetString("server")
		language, _ := cmd.Flags().GetString("language")
		session, _ := cmd.Flags().GetInt64("session")

		if err := Transcribe(server, args[0], language, session); err != nil {
			log.Fatal("transcribe failed", "error", err)
		}
	},
}

func init() {
	TranscribeCmd.Flags().
		String("server", "ws://localhost:8002/ws/transcribe", "Relay websocket URL")
	TranscribeCmd.Flags().
		String("language", "", "Recognition language hint (empty for auto-detect)")
	TranscribeCmd.Flags().
		Int64("session", 0, "Therapy session record to append the transcript to")
}

func Transcribe(server, path, language string, session int64) error {
	audio, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	url := server
	if session != 0 {
		url = fmt.Sprintf("%s?session=%d", server, session)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial relay: %w", err)
	}
	defer conn.Close()

	if language != "" {
		msg := relay.Inbound{Type: relay.MsgSetLanguage, Language: language}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("send set_language: %w", err)
		}
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = "m4a"
	}
	msg := relay.Inbound{
		Type:   relay.MsgAudioFile,
		Data:   base64.StdEncoding.EncodeToString(audio),
		Format: format,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send audio: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		var ev relay.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn("unparseable event", "data", string(data))
			continue
		}

		switch ev.Type {
		case relay.EventConnected:
			log.Info("connected", "message", ev.Message)
		case relay.EventLanguageChanged:
			log.Info("language set", "language", ev.Language)
		case relay.EventProcessing:
			log.Info("processing", "message", ev.Message)
		case relay.EventPartial:
			fmt.Printf("... %s\n", ev.Text)
		case relay.EventFinal:
			fmt.Println(ev.Text)
			if session != 0 {
				stop := relay.Inbound{Type: relay.MsgStop}
				if err := conn.WriteJSON(stop); err != nil {
					log.Warn("stop not delivered, transcript may not be saved", "error", err)
				}
			}
			return nil
		case relay.EventError:
			return fmt.Errorf("relay error: %s", ev.Message)
		default:
			log.Warn("unknown event", "type", ev.Type)
		}
	}
}
