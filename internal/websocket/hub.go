package websocket

import (
	"context"
	"errors"

	"roomchat/internal/coordinator"
	"roomchat/pkg/logger"
)

var ErrClientDisconnected = errors.New("client disconnected")

type clientFrame struct {
	client *Client
	frame  Frame
}

// Hub owns the connection lifecycle and runs every coordinator handler
// on a single event loop, which serializes append-then-broadcast per
// event; per-room ordering then follows from the store's atomic append.
// It resolves the effects' target connection ids to live handles
// through the registry and drops targets that vanished in between.
type Hub struct {
	coord      *coordinator.Coordinator
	dispatcher *Dispatcher

	register   chan *Client
	unregister chan *Client
	inbound    chan *clientFrame

	ctx    context.Context
	cancel context.CancelFunc

	logger *logger.Logger
}

func NewHub(coord *coordinator.Coordinator, dispatcher *Dispatcher, log *logger.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		coord:      coord,
		dispatcher: dispatcher,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *clientFrame, 64),
		ctx:        ctx,
		cancel:     cancel,
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleConnect(client)

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case cf := <-h.inbound:
			effects := h.dispatcher.Dispatch(h.ctx, cf.client.id, cf.frame)
			h.deliver(effects)

		case <-h.ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) handleConnect(client *Client) {
	effects, err := h.coord.OnConnect(h.ctx, client.id, client)
	if err != nil {
		h.logger.Error("Connect handling failed", "connID", client.id, "error", err)
	}
	h.deliver(effects)
}

func (h *Hub) handleDisconnect(client *Client) {
	// readPump exits once per connection, so this runs at most once.
	if !h.coord.Registry().Registered(client.id) {
		return
	}

	effects, err := h.coord.OnDisconnect(h.ctx, client.id)
	if err != nil {
		h.logger.Error("Disconnect handling failed", "connID", client.id, "error", err)
	}
	client.closeSend()
	h.deliver(effects)

	h.logger.Info("Client disconnected", "connID", client.id)
}

func (h *Hub) deliver(effects []coordinator.Effect) {
	for _, effect := range effects {
		for _, connID := range effect.To {
			handle, ok := h.coord.Registry().Handle(connID)
			if !ok {
				continue
			}
			if err := handle.Send(effect.Event, effect.Payload); err != nil {
				h.logger.Debug("Dropped outbound event", "connID", connID, "event", effect.Event, "error", err)
			}
		}
	}
}
