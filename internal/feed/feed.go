// Package feed streams pipeline progress events to websocket
// subscribers so external UIs can follow a run live.
package feed

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gangplank/internal/pipeline"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingEvery  = (pongWait * 9) / 10
	sendBuffer = 32
	recentCap  = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type subscriber struct {
	send chan pipeline.Progress
}

// Server fans progress events out to connected websocket clients. A
// subscriber that cannot keep up is dropped; the pipeline never blocks
// on a slow consumer.
type Server struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	recent []pipeline.Progress
}

func NewServer() *Server {
	return &Server{subs: map[*subscriber]struct{}{}}
}

// Observer adapts the server into an engine observer.
func (s *Server) Observer() pipeline.Observer {
	return func(p pipeline.Progress) { s.Broadcast(p) }
}

// Broadcast queues one event for every subscriber without blocking.
// Recent events are retained and replayed to late subscribers.
func (s *Server) Broadcast(p pipeline.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, p)
	if len(s.recent) > recentCap {
		s.recent = s.recent[len(s.recent)-recentCap:]
	}

	var dropped []*subscriber
	for sub := range s.subs {
		select {
		case sub.send <- p:
		default:
			dropped = append(dropped, sub)
		}
	}
	for _, sub := range dropped {
		delete(s.subs, sub)
		close(sub.send)
	}
}

// Subscribers returns the current connection count.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Handler upgrades requests to websocket sessions. The connection is
// served until the client goes away or falls behind.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sub := &subscriber{send: make(chan pipeline.Progress, sendBuffer)}
		s.add(sub)
		go s.writeLoop(conn, sub)
		s.readLoop(conn, sub)
	})
}

func (s *Server) add(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.recent {
		select {
		case sub.send <- p:
		default:
		}
	}
	s.subs[sub] = struct{}{}
}

func (s *Server) remove(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.send)
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case p, ok := <-sub.send:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(conn *websocket.Conn, sub *subscriber) {
	defer s.remove(sub)
	conn.SetReadLimit(512)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
