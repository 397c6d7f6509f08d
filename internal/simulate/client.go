package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
)

// client speaks the crease HTTP API.
type client struct {
	base string
	http *http.Client
}

func newClient(base string, timeout time.Duration) *client {
	return &client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ballAck struct {
	Status    string         `json:"status"`
	Duplicate bool           `json:"duplicate"`
	Match     model.Snapshot `json:"match"`
}

// do sends body as JSON and decodes a 2xx answer into out.
func (c *client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var e apiError
		_ = json.Unmarshal(data, &e)
		return fmt.Errorf("%w: %s %s: %d %s: %s", ErrRequest, method, path, resp.StatusCode, e.Code, e.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *client) health(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

func (c *client) create(ctx context.Context, in types.CreateMatchInput) (model.Snapshot, error) {
	var snap model.Snapshot
	err := c.do(ctx, http.MethodPost, "/matches", in, &snap)
	return snap, err
}

func (c *client) start(ctx context.Context, id string, in scoring.StartInput) (model.Snapshot, error) { //nolint:gocritic // hugeParam: request value
	var snap model.Snapshot
	err := c.do(ctx, http.MethodPost, "/matches/"+id+"/start", in, &snap)
	return snap, err
}

func (c *client) assign(ctx context.Context, id, role, player string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := c.do(ctx, http.MethodPost, "/matches/"+id+"/"+role, map[string]string{"player_id": player}, &snap)
	return snap, err
}

func (c *client) ball(ctx context.Context, id string, in scoring.BallInput) (ballAck, error) {
	var ack ballAck
	err := c.do(ctx, http.MethodPost, "/matches/"+id+"/balls", in, &ack)
	return ack, err
}

func (c *client) match(ctx context.Context, id string) (model.Snapshot, error) {
	var snap model.Snapshot
	err := c.do(ctx, http.MethodGet, "/matches/"+id, nil, &snap)
	return snap, err
}

func (c *client) scorecard(ctx context.Context, id string) (types.Scorecard, error) {
	var card types.Scorecard
	err := c.do(ctx, http.MethodGet, "/matches/"+id+"/scorecard", nil, &card)
	return card, err
}

// watch dials the live stream of a match.
func (c *client) watch(ctx context.Context, id string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(c.base, "http") + "/matches/" + id + "/live"
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return conn, nil
}
