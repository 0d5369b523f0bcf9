package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"voicerooms/internal/domain"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const roomCodeLen = 6

// RoomSnapshot is a read-only view of a room taken under the store lock.
// Members is a copy in join order.
type RoomSnapshot struct {
	ID        domain.RoomID
	Members   []domain.ConnID
	IsCreator bool
}

// Affected reports one room touched by a disconnect sweep.
type Affected struct {
	ID        domain.RoomID
	Remaining []domain.ConnID
}

// RoomStore owns every live Room. Callers never retain a Room pointer;
// each operation looks up by id, mutates under the lock, and returns
// copies.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*domain.Room)}
}

// newRoomCode mints a 6-character uppercase alphanumeric code. Collisions
// with a live room are not checked; see DESIGN.md.
func newRoomCode() (domain.RoomID, error) {
	buf := make([]byte, roomCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return domain.RoomID(buf), nil
}

// Create makes a room with the creator as its sole member.
func (s *RoomStore) Create(creator domain.ConnID) (domain.RoomID, error) {
	id, err := newRoomCode()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.rooms[id] = &domain.Room{
		ID:        id,
		Members:   []domain.ConnID{creator},
		CreatorID: creator,
		CreatedAt: time.Now(),
	}
	s.mu.Unlock()
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("creator", string(creator)).Msg("room created")
	return id, nil
}

// Join appends conn to the room's member list. Re-joining a room the
// connection is already in is a no-op that still returns the snapshot.
func (s *RoomStore) Join(id domain.RoomID, conn domain.ConnID) (RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return RoomSnapshot{}, ErrRoomNotFound
	}
	if !room.HasMember(conn) {
		if len(room.Members) >= domain.RoomCapacity {
			return RoomSnapshot{}, ErrRoomFull
		}
		room.Members = append(room.Members, conn)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(conn)).Msg("member joined")
	}
	return snapshotLocked(room, conn), nil
}

// Leave removes conn from the room and deletes the room if it is left
// empty. Reports whether a membership was actually removed; absence of
// the room or the membership is not an error.
func (s *RoomStore) Leave(id domain.RoomID, conn domain.ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	return s.removeMemberLocked(room, conn)
}

// RemoveConnectionFromAllRooms sweeps every room once, dropping conn
// wherever present. Rooms left empty are deleted. Used on disconnect.
func (s *RoomStore) RemoveConnectionFromAllRooms(conn domain.ConnID) []Affected {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Affected
	for id, room := range s.rooms {
		if !s.removeMemberLocked(room, conn) {
			continue
		}
		remaining := make([]domain.ConnID, len(room.Members))
		copy(remaining, room.Members)
		out = append(out, Affected{ID: id, Remaining: remaining})
	}
	return out
}

// MemberCount reports whether the room is live and how many members it
// has.
func (s *RoomStore) MemberCount(id domain.RoomID) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return 0, false
	}
	return len(room.Members), true
}

// Stats returns the live room count and total membership across rooms.
func (s *RoomStore) Stats() (rooms, members int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, room := range s.rooms {
		members += len(room.Members)
	}
	return len(s.rooms), members
}

func (s *RoomStore) removeMemberLocked(room *domain.Room, conn domain.ConnID) bool {
	for i, m := range room.Members {
		if m != conn {
			continue
		}
		room.Members = append(room.Members[:i], room.Members[i+1:]...)
		if len(room.Members) == 0 {
			delete(s.rooms, room.ID)
			log.Info().Str("module", "app.rooms").Str("room", string(room.ID)).Msg("room deleted (empty)")
		}
		return true
	}
	return false
}

func snapshotLocked(room *domain.Room, caller domain.ConnID) RoomSnapshot {
	members := make([]domain.ConnID, len(room.Members))
	copy(members, room.Members)
	return RoomSnapshot{
		ID:        room.ID,
		Members:   members,
		IsCreator: room.CreatorID == caller,
	}
}
