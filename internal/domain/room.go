package domain

import "time"

// RoomCapacity bounds the member list of a single room. Joins past the
// bound are rejected, never queued.
const RoomCapacity = 10

type RoomID string

// Room is one ephemeral call. Members keeps join order and holds no
// duplicates. A room with zero members must not exist; the store deletes
// it the moment the last member is removed.
type Room struct {
	ID        RoomID
	Members   []ConnID
	CreatorID ConnID
	CreatedAt time.Time
}

func (r *Room) HasMember(id ConnID) bool {
	for _, m := range r.Members {
		if m == id {
			return true
		}
	}
	return false
}
