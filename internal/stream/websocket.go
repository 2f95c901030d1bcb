// Package stream pushes reconstructed state to live consumers: top-of-book
// rows over websockets and execution records onto Kafka.
package stream

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"itchflow/internal/book"
	"itchflow/internal/snapshot"
	"itchflow/logger"
)

// Broadcaster fans top-of-book rows out to connected websocket clients.
// It implements snapshot.Sink; a slow or dead client is disconnected
// rather than allowed to stall the scan.
type Broadcaster struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	log      *logger.Entry
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		log:     logger.GetLogger().WithComponent("stream"),
	}
}

// ServeHTTP upgrades the request and registers the client.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	n := len(b.clients)
	b.mu.Unlock()

	b.log.WithFields(logger.Fields{"remote": conn.RemoteAddr().String(), "clients": n}).Info("client connected")
}

// Snapshot publishes the top of book to every connected client.
func (b *Broadcaster) Snapshot(view book.View, tsNanos uint64, format snapshot.TimeFormatter) error {
	row := snapshot.TopOfBook(view, tsNanos, format)

	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		if err := conn.WriteJSON(row); err != nil {
			b.log.WithError(err).WithFields(logger.Fields{"remote": conn.RemoteAddr().String()}).Warn("dropping client")
			conn.Close()
			delete(b.clients, conn)
		}
	}
	return nil
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for conn := range b.clients {
		conn.Close()
		delete(b.clients, conn)
	}
}
