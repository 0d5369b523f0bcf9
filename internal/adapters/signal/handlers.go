package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"voicerooms/internal/app"
	"voicerooms/internal/domain"
)

func (ctl *Controller) handleCreateRoom(id domain.ConnID, c *wsConn, data []byte) {
	var p struct {
		UserName string `json:"userName"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			log.Warn().Err(err).Str("module", "signal").Msg("bad create-room payload")
			ctl.sendError(c, "bad payload")
			return
		}
	}
	ctl.Coord.OnCreateRoom(id, p.UserName)
}

func (ctl *Controller) handleJoinRoom(id domain.ConnID, c *wsConn, data []byte) {
	var p struct {
		RoomID   string `json:"roomId"`
		UserName string `json:"userName"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Msg("bad join-room payload")
		ctl.sendError(c, "bad payload")
		return
	}
	ctl.Coord.OnJoinRoom(id, domain.RoomID(p.RoomID), p.UserName)
}

func (ctl *Controller) handleLeaveRoom(id domain.ConnID, c *wsConn, data []byte) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Msg("bad leave-room payload")
		ctl.sendError(c, "bad payload")
		return
	}
	ctl.Coord.OnLeaveRoom(id, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleAudio(id domain.ConnID, c *wsConn, data []byte) {
	var p struct {
		RoomID    string `json:"roomId"`
		AudioData []byte `json:"audioData"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(c, "bad payload")
		return
	}
	ctl.Coord.OnAudio(id, domain.RoomID(p.RoomID), p.AudioData)
}

// handleSignal forwards offer/answer/candidate frames peer-to-peer. The
// body stays raw; only the addressing field is read here.
func (ctl *Controller) handleSignal(id domain.ConnID, c *wsConn, event string, data []byte) {
	var p struct {
		To string `json:"to"`
		app.SignalBody
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Warn().Str("module", "signal").Str("event", event).Msg("bad signal payload")
		ctl.sendError(c, "bad payload")
		return
	}
	ctl.Coord.OnSignal(event, id, domain.ConnID(p.To), p.SignalBody)
}
