package coordinator

import (
	"context"
	"sort"
	"strings"
	"time"

	"roomchat/internal/store"
	"roomchat/pkg/logger"
)

// Coordinator owns room and presence logic. Every handler follows the
// same shape: validate, mutate the durable store, read back what was
// appended, and return the fan-out as effects. Appends hit the store
// before any effect is emitted, so history read by a late joiner can
// never be ahead of what current members saw (durability precedes
// visibility). Per-room ordering rides on the store's atomic append:
// the read-back covers exactly the appended position, never a locally
// reordered view.
//
// Handlers are not safe for concurrent use on the same coordinator; the
// transport hub serializes them on its event loop. The registry carries
// its own lock for the reads other goroutines perform.
type Coordinator struct {
	store    store.Store
	registry *Registry
	logger   *logger.Logger

	now func() time.Time
}

func New(st store.Store, reg *Registry, log *logger.Logger) *Coordinator {
	return &Coordinator{
		store:    st,
		registry: reg,
		logger:   log,
		now:      time.Now,
	}
}

func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// OnConnect registers the connection and hands it the public room list
// and the current presence set. Nothing is emitted to anyone else.
func (c *Coordinator) OnConnect(ctx context.Context, connID string, handle Sender) ([]Effect, error) {
	c.registry.Register(connID, handle)

	rooms, err := c.store.LogRange(ctx, store.PublicRoomsKey, 0, -1)
	if err != nil {
		return nil, err
	}
	users, err := c.store.SetMembers(ctx, store.PresenceKey)
	if err != nil {
		return nil, err
	}
	sort.Strings(users)

	return []Effect{
		sendTo(connID, EventInitRoomList, strings.Join(rooms, ",")),
		sendTo(connID, EventConnectedList, strings.Join(users, ",")),
	}, nil
}

// SetDisplayName adds the (connection, name) pair to the presence set.
// Re-setting the same name is absorbed by set semantics; a rename
// replaces the previous entry so a live connection never holds two.
func (c *Coordinator) SetDisplayName(ctx context.Context, connID, name string) ([]Effect, error) {
	if name == "" || !c.registry.Registered(connID) {
		return nil, nil
	}

	if prev := c.registry.DisplayName(connID); prev != connID && prev != name {
		if err := c.store.RemoveSet(ctx, store.PresenceKey, store.PresenceMember(connID, prev)); err != nil {
			return nil, err
		}
	}
	if err := c.store.AddSet(ctx, store.PresenceKey, store.PresenceMember(connID, name)); err != nil {
		return nil, err
	}
	c.registry.SetName(connID, name)
	return nil, nil
}

// JoinRoom subscribes the connection to the room, appends the join line
// and fans out. An unknown room name comes into existence with its
// first join line; there is no separate create step. The joiner gets
// the full prior history plus a join confirmation, the whole membership
// (joiner included) gets the new line.
func (c *Coordinator) JoinRoom(ctx context.Context, connID, room string) ([]Effect, error) {
	if room == "" || !c.registry.Registered(connID) {
		return nil, nil
	}

	c.registry.Join(connID, room)

	line := FormatJoinLine(c.now(), c.registry.DisplayName(connID), room)
	pos, err := c.store.AppendLog(ctx, store.RoomLogKey(room), line)
	if err != nil {
		c.registry.Leave(connID, room)
		return nil, err
	}
	history, err := c.store.LogRange(ctx, store.RoomLogKey(room), 0, pos-1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		history = []string{line}
	}

	effects := []Effect{sendTo(connID, EventRoomJoin, room)}
	for _, prior := range history[:len(history)-1] {
		effects = append(effects, sendTo(connID, EventRoomChatMessage, RoomPayload(room, prior)))
	}
	effects = append(effects, Effect{
		Event:   EventRoomChatMessage,
		Payload: RoomPayload(room, history[len(history)-1]),
		To:      c.registry.Members(room),
	})
	return effects, nil
}

// SendMessage appends a chat line and broadcasts it to the room's
// membership. Senders that never joined the room are dropped silently;
// their line must not reach the log.
func (c *Coordinator) SendMessage(ctx context.Context, connID, room, body string) ([]Effect, error) {
	if room == "" || body == "" {
		return nil, nil
	}
	if !c.registry.InRoom(connID, room) {
		return nil, nil
	}

	line := FormatChatLine(c.now(), c.registry.DisplayName(connID), body)
	pos, err := c.store.AppendLog(ctx, store.RoomLogKey(room), line)
	if err != nil {
		return nil, err
	}
	appended, err := c.store.LogRange(ctx, store.RoomLogKey(room), pos-1, pos-1)
	if err != nil {
		return nil, err
	}
	if len(appended) == 0 {
		appended = []string{line}
	}

	return []Effect{{
		Event:   EventRoomChatMessage,
		Payload: RoomPayload(room, appended[0]),
		To:      c.registry.Members(room),
	}}, nil
}

// LeaveRoom appends the leave line and broadcasts it while the leaver
// is still a member, so it receives its own confirmation; membership is
// removed only after the fan-out set is computed.
func (c *Coordinator) LeaveRoom(ctx context.Context, connID, room string) ([]Effect, error) {
	if room == "" || !c.registry.InRoom(connID, room) {
		return nil, nil
	}

	line := FormatLeaveLine(c.now(), c.registry.DisplayName(connID), room)
	pos, err := c.store.AppendLog(ctx, store.RoomLogKey(room), line)
	if err != nil {
		return nil, err
	}
	appended, err := c.store.LogRange(ctx, store.RoomLogKey(room), pos-1, pos-1)
	if err != nil {
		return nil, err
	}
	if len(appended) == 0 {
		appended = []string{line}
	}

	members := c.registry.Members(room)
	c.registry.Leave(connID, room)

	return []Effect{{
		Event:   EventRoomChatMessage,
		Payload: RoomPayload(room, appended[0]),
		To:      members,
	}}, nil
}

// RequestPresenceList returns the presence set to the caller only.
func (c *Coordinator) RequestPresenceList(ctx context.Context, connID string) ([]Effect, error) {
	users, err := c.store.SetMembers(ctx, store.PresenceKey)
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return []Effect{sendTo(connID, EventConnectedList, strings.Join(users, ","))}, nil
}

// SendDirect delivers to exactly one live connection and echoes a copy
// back to the sender. Direct messages never touch the durable store; an
// unknown target drops the event.
func (c *Coordinator) SendDirect(connID, targetID, body string) ([]Effect, error) {
	if body == "" || !c.registry.Registered(targetID) {
		return nil, nil
	}

	payload := c.registry.DisplayName(connID) + "," + body
	return []Effect{{
		Event:   EventIndividualChat,
		Payload: payload,
		To:      []string{targetID, connID},
	}}, nil
}

// InvitePrivateRoom notifies each live target of the invite. Nothing is
// persisted and no membership is created; that happens when a target
// approves.
func (c *Coordinator) InvitePrivateRoom(connID, room string, targets []InviteTarget) ([]Effect, error) {
	if room == "" {
		return nil, nil
	}

	var effects []Effect
	for _, target := range targets {
		if !c.registry.Registered(target.ConnectionID) {
			continue
		}
		effects = append(effects, sendTo(target.ConnectionID, EventRoomInvite, room))
	}
	return effects, nil
}

// ApproveInvite durably records the approver's membership in the
// private room and confirms it back with a room-list update.
func (c *Coordinator) ApproveInvite(ctx context.Context, connID, room, approverName string) ([]Effect, error) {
	if room == "" || approverName == "" {
		return nil, nil
	}

	if _, err := c.store.AppendLog(ctx, store.UserRoomsKey(approverName), room); err != nil {
		return nil, err
	}
	return []Effect{sendTo(connID, EventInitRoomList, room)}, nil
}

// OnDisconnect tears down registry state first so no later event can
// address the dead handle, then removes the presence entry and notifies
// everyone else. The departure is announced even for connections that
// never set a name.
func (c *Coordinator) OnDisconnect(ctx context.Context, connID string) ([]Effect, error) {
	c.registry.Unregister(connID)

	users, err := c.store.SetMembers(ctx, store.PresenceKey)
	if err != nil {
		return nil, err
	}

	name := connID
	for _, member := range users {
		id, displayName := store.SplitPresenceMember(member)
		if id != connID {
			continue
		}
		if err := c.store.RemoveSet(ctx, store.PresenceKey, member); err != nil {
			return nil, err
		}
		name = displayName
		break
	}

	others := c.registry.ConnectionIDs()
	if len(others) == 0 {
		return nil, nil
	}
	return []Effect{{
		Event:   EventDisconnectUser,
		Payload: name,
		To:      others,
	}}, nil
}
