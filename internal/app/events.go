package app

import (
	"encoding/json"

	"voicerooms/internal/domain"
)

// Inbound and outbound event names on the transport boundary.
const (
	EvCreateRoom  = "create-room"
	EvJoinRoom    = "join-room"
	EvLeaveRoom   = "leave-room"
	EvAudio       = "audio"
	EvOffer       = "webrtc-offer"
	EvAnswer      = "webrtc-answer"
	EvICE         = "webrtc-ice-candidate"
	EvRoomCreated = "room-created"
	EvRoomJoined  = "room-joined"
	EvUserJoined  = "user-joined"
	EvUserLeft    = "user-left"
	EvError       = "error"
)

type UserInfo struct {
	ID   domain.ConnID `json:"id"`
	Name string        `json:"name"`
}

type RoomCreated struct {
	RoomID   domain.RoomID `json:"roomId"`
	UserName string        `json:"userName"`
}

type RoomJoined struct {
	RoomID    domain.RoomID `json:"roomId"`
	Users     []UserInfo    `json:"users"`
	UserName  string        `json:"userName"`
	IsCreator bool          `json:"isCreator"`
}

type UserJoined struct {
	UserID   domain.ConnID `json:"userId"`
	UserName string        `json:"userName"`
}

type UserLeft struct {
	UserID   domain.ConnID `json:"userId"`
	UserName string        `json:"userName"`
}

type AudioChunk struct {
	From      domain.ConnID `json:"from"`
	FromName  string        `json:"fromName"`
	AudioData []byte        `json:"audioData"`
}

// SignalBody carries an SDP or ICE candidate untouched; the core never
// reads inside it.
type SignalBody struct {
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type SignalForward struct {
	From domain.ConnID `json:"from"`
	SignalBody
}

type ErrorEvent struct {
	Message string `json:"message"`
}
