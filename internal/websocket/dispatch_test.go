package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"roomchat/internal/coordinator"
	"roomchat/internal/store"
	"roomchat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct{}

func (stubSender) Send(event, payload string) error { return nil }

func newTestDispatcher(t *testing.T) (*Dispatcher, *coordinator.Coordinator, *store.MemoryStore) {
	t.Helper()

	st := store.NewMemoryStore()
	coord := coordinator.New(st, coordinator.NewRegistry(), logger.New("error"))
	return NewDispatcher(coord, logger.New("error")), coord, st
}

func frame(t *testing.T, event string, data any) Frame {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Frame{Event: event, Data: raw}
}

func TestDispatchSetUserName(t *testing.T) {
	d, coord, st := newTestDispatcher(t)
	ctx := context.Background()
	_, err := coord.OnConnect(ctx, "c1", stubSender{})
	require.NoError(t, err)

	effects := d.Dispatch(ctx, "c1", frame(t, EventSetUserName, setUserNameData{Name: "alice"}))
	assert.Empty(t, effects)

	members, err := st.SetMembers(ctx, store.PresenceKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1&alice"}, members)
}

func TestDispatchJoinAndSendMessage(t *testing.T) {
	d, coord, _ := newTestDispatcher(t)
	ctx := context.Background()
	_, err := coord.OnConnect(ctx, "c1", stubSender{})
	require.NoError(t, err)

	effects := d.Dispatch(ctx, "c1", frame(t, EventJoin, joinData{RoomName: "lobby"}))
	require.NotEmpty(t, effects)
	assert.Equal(t, coordinator.EventRoomJoin, effects[0].Event)

	effects = d.Dispatch(ctx, "c1", frame(t, EventSendMessage, sendMessageData{RoomName: "lobby", Body: "hi"}))
	require.Len(t, effects, 1)
	assert.Equal(t, coordinator.EventRoomChatMessage, effects[0].Event)
	assert.Contains(t, effects[0].Payload, "hi")
}

func TestDispatchUnknownEventIsDropped(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	effects := d.Dispatch(context.Background(), "c1", Frame{Event: "selfDestruct"})
	assert.Nil(t, effects)
}

func TestDispatchMalformedPayloadIsDropped(t *testing.T) {
	d, coord, st := newTestDispatcher(t)
	ctx := context.Background()
	_, err := coord.OnConnect(ctx, "c1", stubSender{})
	require.NoError(t, err)

	effects := d.Dispatch(ctx, "c1", Frame{Event: EventJoin, Data: json.RawMessage(`"not an object"`)})
	assert.Nil(t, effects)

	lines, err := st.LogRange(ctx, store.RoomLogKey(""), 0, -1)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestDispatchPrivateRoomRequestTargetsDecodedPairs(t *testing.T) {
	d, coord, _ := newTestDispatcher(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := coord.OnConnect(ctx, id, stubSender{})
		require.NoError(t, err)
	}

	effects := d.Dispatch(ctx, "a", frame(t, EventMakePrivateRoomRequest, privateRoomRequestData{
		RoomName: "secret",
		Targets:  "b:bob,c:carol",
	}))

	require.Len(t, effects, 2)
	assert.Equal(t, coordinator.EventRoomInvite, effects[0].Event)
	assert.Equal(t, []string{"b"}, effects[0].To)
	assert.Equal(t, []string{"c"}, effects[1].To)
}

func TestDispatchSendMessageIndividual(t *testing.T) {
	d, coord, _ := newTestDispatcher(t)
	ctx := context.Background()
	_, err := coord.OnConnect(ctx, "a", stubSender{})
	require.NoError(t, err)
	_, err = coord.OnConnect(ctx, "b", stubSender{})
	require.NoError(t, err)

	effects := d.Dispatch(ctx, "a", frame(t, EventSendMessageIndividual, sendIndividualData{
		TargetID: "b",
		Body:     "psst",
	}))

	require.Len(t, effects, 1)
	assert.Equal(t, coordinator.EventIndividualChat, effects[0].Event)
	assert.ElementsMatch(t, []string{"a", "b"}, effects[0].To)
}

func TestParseInviteTargets(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []coordinator.InviteTarget
	}{
		{
			name: "single pair",
			raw:  "c1:alice",
			want: []coordinator.InviteTarget{{ConnectionID: "c1", DisplayName: "alice"}},
		},
		{
			name: "multiple pairs with spaces",
			raw:  "c1:alice, c2:bob",
			want: []coordinator.InviteTarget{
				{ConnectionID: "c1", DisplayName: "alice"},
				{ConnectionID: "c2", DisplayName: "bob"},
			},
		},
		{
			name: "malformed entries skipped",
			raw:  "justaname,:noid,c3:carol",
			want: []coordinator.InviteTarget{{ConnectionID: "c3", DisplayName: "carol"}},
		},
		{
			name: "empty input",
			raw:  "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInviteTargets(tt.raw))
		})
	}
}

func TestOutboundFrameShape(t *testing.T) {
	data, err := json.Marshal(outboundFrame{Event: "roomChatMessage", Msg: "lobby/[x] alice : hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"roomChatMessage","msg":"lobby/[x] alice : hi"}`, string(data))
}
