package relay

import (
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The mobile app connects from the device's LAN address.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades incoming connections and runs one session per
// channel. Sessions are fully independent; a failure in one never
// touches another.
type Handler struct {
	opts   Options
	logger *log.Logger
}

func NewHandler(opts Options, logger *log.Logger) *Handler {
	return &Handler{opts: opts, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	opts := h.opts
	if raw := r.URL.Query().Get("session"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.logger.Warn("ignoring bad session id", "session", raw)
		} else {
			opts.RecordID = id
		}
	}

	sess := NewSession(NewWSChannel(conn), opts)
	sess.Run(r.Context())
}
