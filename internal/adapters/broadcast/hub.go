// Package broadcast streams match snapshots to websocket subscribers.
//
// Every frame carries a full snapshot, so a subscriber that falls behind
// loses intermediate frames but never the latest state.
package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/pkg/logger"
	"github.com/okian/crease/pkg/metrics"
)

// FrameSnapshot is the only frame type the hub emits.
const FrameSnapshot = "snapshot"

// Frame is the JSON message written to subscribers.
type Frame struct {
	Type    string         `json:"type"`
	Version uint64         `json:"version"`
	Match   model.Snapshot `json:"match"`
}

type frame struct {
	version uint64
	data    []byte
}

// Hub fans out snapshots to the subscribers of each match. It implements
// the engine Observer contract through OnSnapshot.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	total  int
	closed bool

	upgrader     websocket.Upgrader
	sendBuffer   int
	writeTimeout time.Duration
	logger       logger.Logger
}

// NewHub creates a hub with no subscribers.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:         make(map[string]map[*subscriber]struct{}),
		sendBuffer:   defaultSendBuffer,
		writeTimeout: defaultWriteTimeout,
		logger:       logger.Nop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("hub")
	return h
}

// Upgrade switches an HTTP request to the websocket protocol.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return h.upgrader.Upgrade(w, r, nil)
}

// Join subscribes conn to matchID. The subscriber is registered before
// current is read, and frames older than what it already received are
// skipped, so the initial snapshot and live frames never go backwards.
func (h *Hub) Join(ctx context.Context, matchID string, conn *websocket.Conn, current func() (model.Snapshot, bool)) error {
	s := &subscriber{
		hub:     h,
		matchID: matchID,
		conn:    conn,
		send:    make(chan frame, h.sendBuffer),
		done:    make(chan struct{}),
	}
	if err := h.add(s); err != nil {
		_ = conn.Close()
		return err
	}

	snap, ok := current()
	if !ok {
		h.remove(s)
		return ErrNoSnapshot
	}
	f, err := encode(&snap)
	if err != nil {
		h.remove(s)
		return err
	}
	s.offer(f)

	go s.writeLoop()
	go s.readLoop()

	h.logger.Debug(ctx, "subscriber joined", logger.String("match_id", matchID), logger.Uint64("version", snap.Version))
	return nil
}

// OnSnapshot broadcasts snap to the subscribers of its match.
func (h *Hub) OnSnapshot(ctx context.Context, snap model.Snapshot) { //nolint:gocritic // hugeParam: observer contract passes values
	h.mu.RLock()
	set := h.subs[snap.ID]
	targets := make([]*subscriber, 0, len(set))
	for s := range set {
		targets = append(targets, s)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	f, err := encode(&snap)
	if err != nil {
		metrics.RecordErrorByComponent("hub", "encode_error")
		h.logger.Error(ctx, "failed to encode snapshot", logger.String("match_id", snap.ID), logger.Error(err))
		return
	}
	for _, s := range targets {
		if !s.offer(f) {
			metrics.RecordLiveDroppedFrame()
		}
	}
	metrics.RecordLiveBroadcast()
}

// Subscribers returns the number of subscribers watching matchID.
func (h *Hub) Subscribers(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[matchID])
}

// Total returns the number of subscribers across all matches.
func (h *Hub) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	all := make([]*subscriber, 0, h.total)
	for _, set := range h.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		h.remove(s)
	}
	return nil
}

func (h *Hub) add(s *subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	set, ok := h.subs[s.matchID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[s.matchID] = set
	}
	set[s] = struct{}{}
	h.total++
	metrics.UpdateLiveSubscribers(h.total)
	return nil
}

// remove unregisters s and closes its connection. It is safe to call more
// than once.
func (h *Hub) remove(s *subscriber) {
	s.once.Do(func() {
		h.mu.Lock()
		if set, ok := h.subs[s.matchID]; ok {
			if _, ok := set[s]; ok {
				delete(set, s)
				h.total--
			}
			if len(set) == 0 {
				delete(h.subs, s.matchID)
			}
		}
		metrics.UpdateLiveSubscribers(h.total)
		h.mu.Unlock()

		close(s.done)
		_ = s.conn.Close()
	})
}

func encode(snap *model.Snapshot) (frame, error) {
	data, err := json.Marshal(Frame{Type: FrameSnapshot, Version: snap.Version, Match: *snap})
	if err != nil {
		return frame{}, err
	}
	return frame{version: snap.Version, data: data}, nil
}
