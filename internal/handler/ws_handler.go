package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/edumaster/edumaster-web/internal/examflow"
	"github.com/edumaster/edumaster-web/internal/middleware"
)

const wsWriteTimeout = 5 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live attempt events (countdown ticks, state changes,
// submission outcomes) to the exam page.
type WSHandler struct {
	flow     *examflow.Manager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(flow *examflow.Manager, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		flow:     flow,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/exams/:id
// Upgrades to WebSocket and forwards attempt events until the attempt or
// the connection ends. The page only listens; answers go over plain HTTP.
func (h *WSHandler) Stream(c *gin.Context) {
	auth := middleware.GetAuth(c)
	examID := c.Param("id")

	sess, ok := h.flow.Get(auth.SessionID, examID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active attempt"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	subID, events := sess.Subscribe()
	defer sess.Unsubscribe(subID)

	wsLog := h.log.With().Str("exam_id", examID).Logger()
	wsLog.Debug().Msg("Exam page connected")

	// Read pump: the page never sends messages, but reading is how we
	// learn the connection is gone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Exam page disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				// Attempt closed server-side.
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
		}
	}
}
