package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/classwork-backend/internal/cache"
	"github.com/stemsi/classwork-backend/internal/middleware"
	"github.com/stemsi/classwork-backend/internal/model"
	"github.com/stemsi/classwork-backend/internal/response"
	"github.com/stemsi/classwork-backend/internal/service"
	ws "github.com/stemsi/classwork-backend/internal/websocket"
)

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

// WSHandler streams live submission events to teachers.
type WSHandler struct {
	feed              *cache.SubmissionFeed
	assignmentService *service.AssignmentService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(feed *cache.SubmissionFeed, assignmentService *service.AssignmentService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		feed:              feed,
		assignmentService: assignmentService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// SubmissionFeed godoc
// WS /ws/v1/admin/assignments/:id/feed
// Upgrades to WebSocket and forwards every submitted and graded event of the assignment.
// Clients send {"action":"ping"} to keep the connection open.
func (h *WSHandler) SubmissionFeed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assignmentID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if _, err := h.assignmentService.GetByID(c.Request.Context(), assignmentID); err != nil {
		failError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("assignment_id", assignmentID.String()).
		Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := h.feed.Subscribe(ctx, assignmentID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Feed subscription failed")
		_ = ws.WriteError(conn, "feed unavailable")
		_ = ws.WriteClose(conn, websocket.CloseInternalServerErr, "feed unavailable")
		return
	}

	wsLog.Info().Msg("Teacher connected to submission feed")

	// Only this goroutine writes to conn; the reader reports pings through a channel.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	if err := ws.WriteTyped(conn, ws.SubscribedResponse{Event: ws.EventSubscribed, AssignmentID: assignmentID.String()}); err != nil {
		return
	}

	events := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case m, ok := <-events:
			if !ok {
				_ = ws.WriteClose(conn, websocket.CloseGoingAway, "feed closed")
				return
			}
			var ev model.SubmissionEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed feed event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.SubmissionResponse{Event: ws.EventSubmission, Submission: ev}); err != nil {
				wsLog.Debug().Err(err).Msg("Feed write failed")
				return
			}
		}
	}
}
