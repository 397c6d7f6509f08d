package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/crease/pkg/logger"
)

type subscriber struct {
	hub     *Hub
	matchID string
	conn    *websocket.Conn
	send    chan frame
	done    chan struct{}
	once    sync.Once

	// last is only touched by writeLoop.
	last uint64
	sent bool
}

// offer queues f without blocking. When the buffer is full the oldest frame
// is dropped to make room and false is returned.
func (s *subscriber) offer(f frame) bool {
	select {
	case s.send <- f:
		return true
	default:
	}
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- f:
	default:
	}
	return false
}

func (s *subscriber) writeLoop() {
	defer s.hub.remove(s)
	for {
		select {
		case <-s.done:
			return
		case f := <-s.send:
			if s.sent && f.version <= s.last {
				continue
			}
			if err := s.write(f.data); err != nil {
				s.hub.logger.Debug(context.Background(), "subscriber write failed",
					logger.String("match_id", s.matchID), logger.Error(err))
				return
			}
			s.last, s.sent = f.version, true
		}
	}
}

func (s *subscriber) write(data []byte) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.hub.writeTimeout)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop drains client frames so control messages are handled and a
// closed connection is noticed.
func (s *subscriber) readLoop() {
	defer s.hub.remove(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
