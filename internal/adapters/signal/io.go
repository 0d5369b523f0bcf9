package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"voicerooms/internal/app"
	"voicerooms/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) pongWait() time.Duration {
	return ctl.PingPeriod * 10 / 9
}

func (ctl *Controller) writePump(c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *Controller) readPump(id domain.ConnID, c *wsConn) {
	defer func() {
		ctl.Coord.OnDisconnect(id)
		c.Close()
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("disconnected")
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
			}
			return
		}
		ctl.handleEvent(id, c, data)
	}
}

func (ctl *Controller) handleEvent(id domain.ConnID, c *wsConn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad frame")
		ctl.sendError(c, "bad payload")
		return
	}

	switch env.Type {
	case app.EvCreateRoom:
		ctl.handleCreateRoom(id, c, env.Data)
	case app.EvJoinRoom:
		ctl.handleJoinRoom(id, c, env.Data)
	case app.EvLeaveRoom:
		ctl.handleLeaveRoom(id, c, env.Data)
	case app.EvAudio:
		ctl.handleAudio(id, c, env.Data)
	case app.EvOffer, app.EvAnswer, app.EvICE:
		ctl.handleSignal(id, c, env.Type, env.Data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	_ = c.TrySend(app.EvError, app.ErrorEvent{Message: msg})
}
