package store

import (
	"context"
	"strings"
)

// Key layout in the durable store. One list per room log, one global
// presence set, one list of public room names, and one list of approved
// rooms per display name.
const (
	PresenceKey    = "connectUsers"
	PublicRoomsKey = "rooms:public"

	roomLogPrefix = "message:"
	presenceSep   = "&"
)

func RoomLogKey(room string) string {
	return roomLogPrefix + room
}

func UserRoomsKey(displayName string) string {
	return displayName + ":rooms"
}

// PresenceMember encodes a presence entry as it is stored in the
// connected-users set.
func PresenceMember(connID, displayName string) string {
	return connID + presenceSep + displayName
}

// SplitPresenceMember is the inverse of PresenceMember. The display name
// may itself contain the separator; only the first one splits.
func SplitPresenceMember(member string) (connID, displayName string) {
	connID, displayName, _ = strings.Cut(member, presenceSep)
	return connID, displayName
}

// Store is the durable-store adapter the coordinator runs against. Each
// operation is individually atomic; no cross-key transactions are
// assumed. AppendLog returns the length of the list after the append,
// which is the appended line's 1-based position.
type Store interface {
	AppendLog(ctx context.Context, key, line string) (int64, error)
	LogRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	AddSet(ctx context.Context, key, member string) error
	RemoveSet(ctx context.Context, key, member string) error
	SetMembers(ctx context.Context, key string) ([]string, error)
}

// SeedPublicRooms populates the public room list on startup. Seeding is
// idempotent: a non-empty list is left untouched so restarts don't
// duplicate entries.
func SeedPublicRooms(ctx context.Context, s Store, rooms []string) error {
	existing, err := s.LogRange(ctx, PublicRoomsKey, 0, -1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, room := range rooms {
		if _, err := s.AppendLog(ctx, PublicRoomsKey, room); err != nil {
			return err
		}
	}
	return nil
}
