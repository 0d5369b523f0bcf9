package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"voicerooms/internal/domain"
)

// Sink is one connection's outbound channel, owned by the transport
// adapter. TrySend must never block; a full or closed sink returns an
// error and the frame is dropped.
type Sink interface {
	TrySend(event string, payload any) error
}

// Dispatcher is the fan-out primitive. It keeps its own room-membership
// index (the transport broadcast groups) next to the sink table, so
// delivery needs no room-store lookup. No buffering, no retry: a failed
// send is dropped silently, matching best-effort voice traffic.
type Dispatcher struct {
	mu     sync.RWMutex
	sinks  map[domain.ConnID]Sink
	groups map[domain.RoomID]map[domain.ConnID]struct{}
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		sinks:  make(map[domain.ConnID]Sink),
		groups: make(map[domain.RoomID]map[domain.ConnID]struct{}),
	}
}

// Attach registers the sink for a freshly connected id.
func (d *Dispatcher) Attach(id domain.ConnID, s Sink) {
	d.mu.Lock()
	d.sinks[id] = s
	d.mu.Unlock()
}

// Detach drops the sink and any group memberships left behind.
func (d *Dispatcher) Detach(id domain.ConnID) {
	d.mu.Lock()
	delete(d.sinks, id)
	for room, members := range d.groups {
		delete(members, id)
		if len(members) == 0 {
			delete(d.groups, room)
		}
	}
	d.mu.Unlock()
}

func (d *Dispatcher) JoinGroup(room domain.RoomID, id domain.ConnID) {
	d.mu.Lock()
	members, ok := d.groups[room]
	if !ok {
		members = make(map[domain.ConnID]struct{})
		d.groups[room] = members
	}
	members[id] = struct{}{}
	d.mu.Unlock()
}

func (d *Dispatcher) LeaveGroup(room domain.RoomID, id domain.ConnID) {
	d.mu.Lock()
	if members, ok := d.groups[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(d.groups, room)
		}
	}
	d.mu.Unlock()
}

// SendTo delivers one event to one connection, best effort.
func (d *Dispatcher) SendTo(id domain.ConnID, event string, payload any) {
	d.mu.RLock()
	sink, ok := d.sinks[id]
	d.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "app.dispatch").Str("conn", string(id)).Str("event", event).Msg("no sink, dropped")
		return
	}
	if err := sink.TrySend(event, payload); err != nil {
		log.Debug().Err(err).Str("module", "app.dispatch").Str("conn", string(id)).Str("event", event).Msg("send dropped")
	}
}

// BroadcastToRoom fans an event out to every group member except exclude.
func (d *Dispatcher) BroadcastToRoom(room domain.RoomID, event string, payload any, exclude domain.ConnID) {
	d.mu.RLock()
	targets := make([]Sink, 0, len(d.groups[room]))
	ids := make([]domain.ConnID, 0, len(d.groups[room]))
	for id := range d.groups[room] {
		if id == exclude {
			continue
		}
		if sink, ok := d.sinks[id]; ok {
			targets = append(targets, sink)
			ids = append(ids, id)
		}
	}
	d.mu.RUnlock()

	for i, sink := range targets {
		if err := sink.TrySend(event, payload); err != nil {
			log.Debug().Err(err).Str("module", "app.dispatch").Str("conn", string(ids[i])).Str("event", event).Msg("broadcast dropped")
		}
	}
}
