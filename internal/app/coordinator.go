package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"voicerooms/internal/domain"
)

// Coordinator handles the per-connection events delivered by the
// transport adapter. It consults the registry and room store, then asks
// the dispatcher to deliver outbound events. It holds no business logic
// about payload contents.
type Coordinator struct {
	Registry *Registry
	Rooms    *RoomStore
	Relay    *Dispatcher
}

func NewCoordinator(reg *Registry, rooms *RoomStore, relay *Dispatcher) *Coordinator {
	return &Coordinator{Registry: reg, Rooms: rooms, Relay: relay}
}

// OnConnect binds the transport sink for a fresh connection.
func (c *Coordinator) OnConnect(id domain.ConnID, sink Sink) {
	c.Relay.Attach(id, sink)
}

func (c *Coordinator) OnCreateRoom(id domain.ConnID, requestedName string) {
	name := c.Registry.Register(id, requestedName)
	roomID, err := c.Rooms.Create(id)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coord").Str("conn", string(id)).Msg("create room")
		c.Relay.SendTo(id, EvError, ErrorEvent{Message: "could not create room"})
		return
	}
	c.Relay.JoinGroup(roomID, id)
	c.Relay.SendTo(id, EvRoomCreated, RoomCreated{RoomID: roomID, UserName: name})
}

func (c *Coordinator) OnJoinRoom(id domain.ConnID, roomID domain.RoomID, requestedName string) {
	name := c.Registry.Register(id, requestedName)
	snap, err := c.Rooms.Join(roomID, id)
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) && !errors.Is(err, ErrRoomFull) {
			log.Error().Err(err).Str("module", "app.coord").Str("conn", string(id)).Msg("join room")
		}
		c.Relay.SendTo(id, EvError, ErrorEvent{Message: err.Error()})
		return
	}
	c.Relay.JoinGroup(roomID, id)

	users := make([]UserInfo, 0, len(snap.Members))
	for _, m := range snap.Members {
		users = append(users, UserInfo{ID: m, Name: c.Registry.DisplayName(m)})
	}
	// The joiner must have full room state before anyone else reacts, so
	// its room-joined goes out before the user-joined broadcast.
	c.Relay.SendTo(id, EvRoomJoined, RoomJoined{
		RoomID:    snap.ID,
		Users:     users,
		UserName:  name,
		IsCreator: snap.IsCreator,
	})
	c.Relay.BroadcastToRoom(roomID, EvUserJoined, UserJoined{UserID: id, UserName: name}, id)
}

// OnAudio relays an opaque audio chunk to everyone else in the room.
func (c *Coordinator) OnAudio(id domain.ConnID, roomID domain.RoomID, audio []byte) {
	c.Relay.BroadcastToRoom(roomID, EvAudio, AudioChunk{
		From:      id,
		FromName:  c.Registry.DisplayName(id),
		AudioData: audio,
	}, id)
}

// OnSignal forwards an offer, answer, or ICE candidate to exactly one
// peer. No room-membership check: signaling is addressed by connection
// id.
func (c *Coordinator) OnSignal(event string, from, to domain.ConnID, body SignalBody) {
	c.Relay.SendTo(to, event, SignalForward{From: from, SignalBody: body})
}

func (c *Coordinator) OnLeaveRoom(id domain.ConnID, roomID domain.RoomID) {
	name := c.Registry.DisplayName(id)
	c.Relay.LeaveGroup(roomID, id)
	if c.Rooms.Leave(roomID, id) {
		c.Relay.BroadcastToRoom(roomID, EvUserLeft, UserLeft{UserID: id, UserName: name}, id)
	}
	c.Registry.Remove(id)
}

// OnDisconnect sweeps the connection out of every room and notifies the
// survivors. Safe to call for a connection that never joined anything,
// and idempotent: a second call finds no memberships and emits nothing.
func (c *Coordinator) OnDisconnect(id domain.ConnID) {
	name := c.Registry.DisplayName(id)
	for _, aff := range c.Rooms.RemoveConnectionFromAllRooms(id) {
		c.Relay.LeaveGroup(aff.ID, id)
		if len(aff.Remaining) > 0 {
			c.Relay.BroadcastToRoom(aff.ID, EvUserLeft, UserLeft{UserID: id, UserName: name}, id)
		}
	}
	c.Registry.Remove(id)
	c.Relay.Detach(id)
}
