package coordinator

// Outbound event names. These are the client-facing contract; the
// transport writes them verbatim into the outgoing frame.
const (
	EventInitRoomList    = "initroomlist"
	EventConnectedList   = "connectedList"
	EventRoomInvite      = "roomInvite"
	EventRoomChatMessage = "roomChatMessage"
	EventRoomJoin        = "roomjoin"
	EventIndividualChat  = "individualChatMessage"
	EventDisconnectUser  = "disconnectUser"
)

// Effect is one outbound delivery computed by a coordinator handler:
// event plus payload, addressed to explicit connection ids. Handlers
// return effects as data instead of writing to sockets so the
// coordinator can be exercised without a live transport.
type Effect struct {
	Event   string
	Payload string
	To      []string
}

func sendTo(connID, event, payload string) Effect {
	return Effect{Event: event, Payload: payload, To: []string{connID}}
}

// InviteTarget is one recipient of a private-room invite, decoded from
// the transport's "id:name,id:name" form before it reaches the
// coordinator.
type InviteTarget struct {
	ConnectionID string
	DisplayName  string
}
