package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"roomchat/internal/coordinator"
	"roomchat/pkg/logger"
)

// Inbound event names. Each carries the connection id implicitly from
// the transport session.
const (
	EventSetUserName            = "setUserName"
	EventJoin                   = "join"
	EventSendMessage            = "sendMessage"
	EventLeaveRoom              = "leaveRoom"
	EventGetConnectedList       = "getConnectedList"
	EventSendMessageIndividual  = "sendMessageIndividual"
	EventMakePrivateRoomRequest = "makePrivateRoomRequest"
	EventInviteApprove          = "inviteApprove"
)

// Frame is one inbound client message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Msg   string `json:"msg"`
}

type setUserNameData struct {
	Name string `json:"name"`
}

type joinData struct {
	RoomName string `json:"roomName"`
}

type sendMessageData struct {
	RoomName string `json:"roomName"`
	Body     string `json:"body"`
}

type leaveRoomData struct {
	RoomName string `json:"roomName"`
}

type sendIndividualData struct {
	TargetID string `json:"targetId"`
	Body     string `json:"body"`
}

type privateRoomRequestData struct {
	RoomName string `json:"roomName"`
	Targets  string `json:"targets"`
}

type inviteApproveData struct {
	RoomName     string `json:"roomName"`
	ApproverName string `json:"approverName"`
}

type handlerFunc func(ctx context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error)

// Dispatcher decodes inbound frames at the transport boundary and
// routes them to the coordinator through an explicit event table. A
// malformed payload or unknown event is dropped, never an error back to
// the client and never a dead connection task.
type Dispatcher struct {
	coord  *coordinator.Coordinator
	logger *logger.Logger
	table  map[string]handlerFunc
}

func NewDispatcher(coord *coordinator.Coordinator, log *logger.Logger) *Dispatcher {
	d := &Dispatcher{
		coord:  coord,
		logger: log,
	}
	d.table = map[string]handlerFunc{
		EventSetUserName:            d.setUserName,
		EventJoin:                   d.join,
		EventSendMessage:            d.sendMessage,
		EventLeaveRoom:              d.leaveRoom,
		EventGetConnectedList:       d.getConnectedList,
		EventSendMessageIndividual:  d.sendMessageIndividual,
		EventMakePrivateRoomRequest: d.makePrivateRoomRequest,
		EventInviteApprove:          d.inviteApprove,
	}
	return d
}

// Dispatch runs the handler for the frame's event and returns the
// outbound effects. Store failures are logged and the event's effects
// are discarded; the originating connection is not notified.
func (d *Dispatcher) Dispatch(ctx context.Context, connID string, frame Frame) []coordinator.Effect {
	handler, ok := d.table[frame.Event]
	if !ok {
		d.logger.Debug("Unknown inbound event", "event", frame.Event, "connID", connID)
		return nil
	}

	effects, err := handler(ctx, connID, frame.Data)
	if err != nil {
		d.logger.Error("Event handling failed", "event", frame.Event, "connID", connID, "error", err)
		return nil
	}
	return effects
}

func (d *Dispatcher) setUserName(ctx context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload setUserNameData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.SetDisplayName(ctx, connID, payload.Name)
}

func (d *Dispatcher) join(ctx context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload joinData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.JoinRoom(ctx, connID, payload.RoomName)
}

func (d *Dispatcher) sendMessage(ctx context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload sendMessageData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.SendMessage(ctx, connID, payload.RoomName, payload.Body)
}

func (d *Dispatcher) leaveRoom(ctx context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload leaveRoomData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.LeaveRoom(ctx, connID, payload.RoomName)
}

func (d *Dispatcher) getConnectedList(ctx context.Context, connID string, _ json.RawMessage) ([]coordinator.Effect, error) {
	return d.coord.RequestPresenceList(ctx, connID)
}

func (d *Dispatcher) sendMessageIndividual(_ context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload sendIndividualData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.SendDirect(connID, payload.TargetID, payload.Body)
}

func (d *Dispatcher) makePrivateRoomRequest(_ context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload privateRoomRequestData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.InvitePrivateRoom(connID, payload.RoomName, ParseInviteTargets(payload.Targets))
}

func (d *Dispatcher) inviteApprove(ctx context.Context, connID string, data json.RawMessage) ([]coordinator.Effect, error) {
	var payload inviteApproveData
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil
	}
	return d.coord.ApproveInvite(ctx, connID, payload.RoomName, payload.ApproverName)
}

// ParseInviteTargets decodes the delimited "id:name,id:name" invite
// target list into typed pairs, skipping malformed entries.
func ParseInviteTargets(raw string) []coordinator.InviteTarget {
	var targets []coordinator.InviteTarget
	for _, pair := range strings.Split(raw, ",") {
		id, name, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || id == "" {
			continue
		}
		targets = append(targets, coordinator.InviteTarget{
			ConnectionID: id,
			DisplayName:  name,
		})
	}
	return targets
}
