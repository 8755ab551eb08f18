package messaging

import (
	"context"
	"log"

	"grievance-service/internal/model"
)

// SSEClient listens on every recipient key it was registered with: the
// user's own id plus any jurisdiction channels.
type SSEClient struct {
	Recipients []string
	Channel    chan *model.Notification
}

type SSEHub struct {
	clients    map[string][]*SSEClient
	register   chan *SSEClient
	unregister chan *SSEClient
	broadcast  chan *model.Notification
	done       chan struct{}
}

func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients:    make(map[string][]*SSEClient),
		register:   make(chan *SSEClient),
		unregister: make(chan *SSEClient),
		broadcast:  make(chan *model.Notification, 100),
		done:       make(chan struct{}),
	}
}

// Run owns the client table until ctx is cancelled. On exit every client
// still registered has its channel closed.
func (h *SSEHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			for _, key := range client.Recipients {
				h.clients[key] = append(h.clients[key], client)
			}
			log.Printf("sse: client registered for %v", client.Recipients)

		case client := <-h.unregister:
			for _, key := range client.Recipients {
				list := h.clients[key]
				for i, c := range list {
					if c == client {
						h.clients[key] = append(list[:i], list[i+1:]...)
						break
					}
				}
				if len(h.clients[key]) == 0 {
					delete(h.clients, key)
				}
			}
			close(client.Channel)

		case notification := <-h.broadcast:
			for _, client := range h.clients[notification.Recipient] {
				select {
				case client.Channel <- notification:
				default:
					// slow reader, drop
				}
			}
		}
	}
}

func (h *SSEHub) closeAll() {
	seen := make(map[*SSEClient]bool)
	for _, list := range h.clients {
		for _, c := range list {
			if !seen[c] {
				seen[c] = true
				close(c.Channel)
			}
		}
	}
	h.clients = make(map[string][]*SSEClient)
}

// RegisterClient returns a client with an already closed channel once the
// hub has stopped.
func (h *SSEHub) RegisterClient(recipients []string) *SSEClient {
	client := &SSEClient{
		Recipients: recipients,
		Channel:    make(chan *model.Notification, 10),
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Channel)
	}
	return client
}

// UnregisterClient is a no-op once the hub has stopped.
func (h *SSEHub) UnregisterClient(client *SSEClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *SSEHub) Send(notification *model.Notification) {
	select {
	case h.broadcast <- notification:
	default:
		log.Printf("sse: broadcast buffer full, dropping %s", notification.ID)
	}
}
