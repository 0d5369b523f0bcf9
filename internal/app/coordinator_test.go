package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicerooms/internal/domain"
)

func newTestCoordinator() (*Coordinator, *eventLog) {
	c := NewCoordinator(NewRegistry(), NewRoomStore(), NewDispatcher())
	return c, &eventLog{}
}

func connect(c *Coordinator, l *eventLog, id domain.ConnID) {
	c.OnConnect(id, &fakeSink{id: id, log: l})
}

// createRoom drives OnCreateRoom and returns the minted room id.
func createRoom(t *testing.T, c *Coordinator, l *eventLog, id domain.ConnID, name string) domain.RoomID {
	t.Helper()
	c.OnCreateRoom(id, name)
	events := l.byConn(id)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.Equal(t, EvRoomCreated, last.name)
	return last.payload.(RoomCreated).RoomID
}

func TestCreateRoom_EmitsRoomCreatedToRequesterOnly(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")

	roomID := createRoom(t, c, l, "a", "Alice")

	require.Len(t, l.events, 1)
	created := l.events[0].payload.(RoomCreated)
	assert.Equal(t, roomID, created.RoomID)
	assert.Equal(t, "Alice", created.UserName)
	assert.Empty(t, l.byConn("b"))

	count, ok := c.Rooms.MemberCount(roomID)
	require.True(t, ok)
	assert.Equal(t, 1, count)
}

func TestJoinRoom_SnapshotThenBroadcast(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")
	roomID := createRoom(t, c, l, "a", "Alice")

	c.OnJoinRoom("b", roomID, "Bob")

	bEvents := l.byConn("b")
	require.Len(t, bEvents, 1)
	require.Equal(t, EvRoomJoined, bEvents[0].name)
	joined := bEvents[0].payload.(RoomJoined)
	assert.Equal(t, roomID, joined.RoomID)
	assert.False(t, joined.IsCreator)
	assert.Equal(t, "Bob", joined.UserName)
	require.Equal(t, []UserInfo{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}, joined.Users)

	aEvents := l.byConn("a")
	require.Len(t, aEvents, 2) // room-created, then user-joined
	require.Equal(t, EvUserJoined, aEvents[1].name)
	assert.Equal(t, UserJoined{UserID: "b", UserName: "Bob"}, aEvents[1].payload)

	// The joiner's room-joined must precede everyone else's user-joined.
	var joinedIdx, notifyIdx int
	for i, e := range l.events {
		switch e.name {
		case EvRoomJoined:
			joinedIdx = i
		case EvUserJoined:
			notifyIdx = i
		}
	}
	assert.Less(t, joinedIdx, notifyIdx, "room-joined must be emitted before user-joined")
}

func TestJoinRoom_NotFoundEmitsErrorOnly(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")

	c.OnJoinRoom("a", "NOPE42", "Alice")

	events := l.byConn("a")
	require.Len(t, events, 1)
	require.Equal(t, EvError, events[0].name)
	assert.Equal(t, ErrorEvent{Message: "room not found"}, events[0].payload)

	rooms, _ := c.Rooms.Stats()
	assert.Zero(t, rooms)
}

func TestJoinRoom_FullEmitsErrorAndLeavesRoomIntact(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	roomID := createRoom(t, c, l, "a", "Alice")
	for i := 1; i < domain.RoomCapacity; i++ {
		id := domain.ConnID(fmt.Sprintf("conn-%d", i))
		connect(c, l, id)
		c.OnJoinRoom(id, roomID, "")
	}
	count, _ := c.Rooms.MemberCount(roomID)
	require.Equal(t, domain.RoomCapacity, count)
	before := len(l.events)

	connect(c, l, "overflow")
	c.OnJoinRoom("overflow", roomID, "Late")

	events := l.byConn("overflow")
	require.Len(t, events, 1)
	require.Equal(t, EvError, events[0].name)
	assert.Equal(t, ErrorEvent{Message: "room is full"}, events[0].payload)
	assert.Len(t, l.events, before+1, "rejected join must not broadcast anything")

	count, _ = c.Rooms.MemberCount(roomID)
	assert.Equal(t, domain.RoomCapacity, count)
}

func TestLeaveRoom_NotifiesRemaining(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")
	roomID := createRoom(t, c, l, "a", "Alice")
	c.OnJoinRoom("b", roomID, "Bob")

	c.OnLeaveRoom("b", roomID)

	aEvents := l.byConn("a")
	last := aEvents[len(aEvents)-1]
	require.Equal(t, EvUserLeft, last.name)
	assert.Equal(t, UserLeft{UserID: "b", UserName: "Bob"}, last.payload)

	// Room survives with A alone.
	count, ok := c.Rooms.MemberCount(roomID)
	require.True(t, ok)
	assert.Equal(t, 1, count)

	// B's registry entry is gone.
	_, ok = c.Registry.Lookup("b")
	assert.False(t, ok)
}

func TestLeaveRoom_NonMemberEmitsNothing(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "x")
	roomID := createRoom(t, c, l, "a", "Alice")
	before := len(l.events)

	c.OnLeaveRoom("x", roomID)
	assert.Len(t, l.events, before)
}

func TestDisconnect_DeletesEmptiedRoom(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	roomID := createRoom(t, c, l, "a", "Alice")

	c.OnDisconnect("a")

	_, ok := c.Rooms.MemberCount(roomID)
	assert.False(t, ok)

	connect(c, l, "b")
	c.OnJoinRoom("b", roomID, "Bob")
	events := l.byConn("b")
	require.Equal(t, EvError, events[len(events)-1].name)
}

func TestDisconnect_Idempotent(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")
	roomID := createRoom(t, c, l, "a", "Alice")
	c.OnJoinRoom("b", roomID, "Bob")

	c.OnDisconnect("b")
	c.OnDisconnect("b")

	var userLeft int
	for _, e := range l.byConn("a") {
		if e.name == EvUserLeft {
			userLeft++
		}
	}
	assert.Equal(t, 1, userLeft, "second disconnect must not emit a duplicate user-left")
}

func TestDisconnect_NeverJoinedIsSafe(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	c.OnDisconnect("a")
	c.OnDisconnect("stranger")
	assert.Empty(t, l.events)
}

func TestAudio_FansOutToRoomExceptSender(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")
	connect(c, l, "c")
	roomID := createRoom(t, c, l, "a", "Alice")
	c.OnJoinRoom("b", roomID, "Bob")
	c.OnJoinRoom("c", roomID, "Cara")

	chunk := []byte{0x01, 0x02, 0x03}
	before := len(l.events)
	c.OnAudio("a", roomID, chunk)

	var got []sentEvent
	for _, e := range l.events[before:] {
		require.Equal(t, EvAudio, e.name)
		got = append(got, e)
	}
	require.Len(t, got, 2)
	for _, e := range got {
		assert.NotEqual(t, domain.ConnID("a"), e.conn, "sender must not hear itself")
		audio := e.payload.(AudioChunk)
		assert.Equal(t, domain.ConnID("a"), audio.From)
		assert.Equal(t, "Alice", audio.FromName)
		assert.Equal(t, chunk, audio.AudioData)
	}
}

func TestSignal_UnicastToTarget(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")
	connect(c, l, "c")

	body := SignalBody{SDP: []byte(`"v=0"`)}
	c.OnSignal(EvOffer, "a", "b", body)

	require.Len(t, l.events, 1)
	e := l.events[0]
	assert.Equal(t, domain.ConnID("b"), e.conn)
	assert.Equal(t, EvOffer, e.name)
	fwd := e.payload.(SignalForward)
	assert.Equal(t, domain.ConnID("a"), fwd.From)
	assert.Equal(t, body.SDP, fwd.SDP)
}

func TestEndToEndFlow(t *testing.T) {
	c, l := newTestCoordinator()
	connect(c, l, "a")
	connect(c, l, "b")

	// A creates room R and is sole member with isCreator=true.
	roomID := createRoom(t, c, l, "a", "Alice")
	snap, err := c.Rooms.Join(roomID, "a")
	require.NoError(t, err)
	assert.True(t, snap.IsCreator)

	// B joins: B sees both users, A hears about B.
	c.OnJoinRoom("b", roomID, "Bob")
	joined := l.byConn("b")[0].payload.(RoomJoined)
	assert.Equal(t, []UserInfo{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}}, joined.Users)
	assert.False(t, joined.IsCreator)

	// B leaves: A notified, room lives on with A.
	c.OnLeaveRoom("b", roomID)
	count, ok := c.Rooms.MemberCount(roomID)
	require.True(t, ok)
	assert.Equal(t, 1, count)

	// A disconnects: room is gone.
	c.OnDisconnect("a")
	_, ok = c.Rooms.MemberCount(roomID)
	assert.False(t, ok)
}
