package server

import (
	"context"
	"net/http"
	"time"

	"quiz-buzzer/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
}

func (s *Server) handleWebsocket(c *gin.Context) {
	code, ok := bindCode(c)
	if !ok {
		writeStoreError(c, game.ErrNotFound)
		return
	}
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("game_code", code).Msg("websocket upgrade failed")
		return
	}

	cl := newClient(uuid.NewString(), s.cfg.WSSendBuffer)
	log.Info().
		Str("game_code", code).
		Str("connection_id", cl.id).
		Str("remote", c.Request.RemoteAddr).
		Msg("websocket connected")

	// The request context ends when the handler returns, so the pumps run on
	// their own.
	ctx := context.WithoutCancel(c.Request.Context())
	go s.writePump(code, conn, cl)
	s.hub.Connect(ctx, code, cl)
	go s.readPump(ctx, code, conn, cl)
}

func (s *Server) readPump(ctx context.Context, code string, conn *websocket.Conn, cl *client) {
	defer func() {
		s.hub.Disconnect(code, cl)
		_ = conn.Close()
		log.Info().
			Str("game_code", code).
			Str("connection_id", cl.id).
			Int64("player_id", cl.player()).
			Int("remaining", s.hub.size(code)).
			Msg("websocket disconnected")
	}()

	conn.SetReadLimit(s.cfg.WSMaxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(s.cfg.WSPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.WSPongWait))
	})

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("game_code", code).Str("connection_id", cl.id).Msg("websocket read error")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.WSPongWait))
		if messageType != websocket.TextMessage {
			continue
		}
		s.hub.HandleMessage(ctx, code, cl, payload)
	}
}

func (s *Server) writePump(code string, conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(s.cfg.PingPeriod())
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("game_code", code).Str("connection_id", cl.id).Msg("websocket write failed")
				s.hub.Disconnect(code, cl)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("game_code", code).Str("connection_id", cl.id).Msg("websocket ping failed")
				s.hub.Disconnect(code, cl)
				return
			}
		}
	}
}
