// Package devtools implements the Devtools Bridge: discovery, connection,
// and message-id-multiplexed command dispatch over the Chrome DevTools
// Protocol, using gorilla/websocket directly rather than a high-level CDP
// client library (see DESIGN.md — the spec's literal request/response
// message-id contract needs raw frame control a higher-level client hides).
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"warden/internal/logging"
)

// sendTimeout bounds how long Send waits for a matching response frame.
const sendTimeout = 10 * time.Second

// Target is one discoverable page endpoint.
type Target struct {
	Port        int    `json:"-"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	WebSocketURL string `json:"webSocketDebuggerUrl"`
}

// Connection is one open CDP WebSocket, with its own message-id sequence.
type Connection struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	nextID    int64
	pending   map[int64]chan frame
	closed    bool
	onFailure func()
}

type frame struct {
	ID     int64           `json:"id"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *frameError     `json:"error,omitempty"`
}

type frameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Bridge is the Devtools Bridge, owning every open CDP connection keyed by port.
type Bridge struct {
	mu          sync.Mutex
	connections map[int]*Connection
	portRange   [2]int
	httpClient  *http.Client
}

// New builds a Devtools Bridge that probes ports in [low, high] for discovery.
func New(low, high int) *Bridge {
	return &Bridge{
		connections: make(map[int]*Connection),
		portRange:   [2]int{low, high},
		httpClient:  &http.Client{Timeout: 2 * time.Second},
	}
}

// Discover probes every port in the configured range and returns page
// targets with a WebSocket debugger URL.
func (b *Bridge) Discover(ctx context.Context) []Target {
	var targets []Target
	var mu sync.Mutex
	var wg sync.WaitGroup

	for port := b.portRange[0]; port <= b.portRange[1]; port++ {
		port := port
		wg.Add(1)
		go func() {
			defer wg.Done()
			found := b.probe(ctx, port)
			if len(found) == 0 {
				return
			}
			mu.Lock()
			targets = append(targets, found...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return targets
}

func (b *Bridge) probe(ctx context.Context, port int) []Target {
	url := fmt.Sprintf("http://127.0.0.1:%d/json", port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var raw []Target
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil
	}

	var pages []Target
	for _, t := range raw {
		if t.Type == "page" && t.WebSocketURL != "" {
			t.Port = port
			pages = append(pages, t)
		}
	}
	return pages
}

// Connect opens (or returns the existing) connection to the first page
// target discovered on port.
func (b *Bridge) Connect(ctx context.Context, port int) (*Connection, error) {
	b.mu.Lock()
	if existing, ok := b.connections[port]; ok {
		b.mu.Unlock()
		return existing, nil
	}
	b.mu.Unlock()

	targets := b.probe(ctx, port)
	if len(targets) == 0 {
		return nil, fmt.Errorf("no page target found on port %d", port)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, targets[0].WebSocketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial devtools websocket: %w", err)
	}

	c := &Connection{conn: conn, pending: make(map[int64]chan frame)}
	c.onFailure = func() { b.drop(port) }
	go c.readLoop()

	b.mu.Lock()
	b.connections[port] = c
	b.mu.Unlock()

	logging.Get(logging.CategoryDevtools).Info("connected to devtools target on port %d: %s", port, targets[0].Title)
	return c, nil
}

func (b *Bridge) drop(port int) {
	b.mu.Lock()
	delete(b.connections, port)
	b.mu.Unlock()
}

func (c *Connection) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.closed = true
			for _, ch := range c.pending {
				close(ch)
			}
			c.pending = nil
			c.mu.Unlock()
			if c.onFailure != nil {
				c.onFailure()
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[f.ID]
		if ok {
			delete(c.pending, f.ID)
		}
		c.mu.Unlock()

		if ok {
			ch <- f
			close(ch)
		}
		// frames without a matching pending id are unsolicited events; discard.
	}
}

// Send issues a CDP method call and waits for its matching response frame.
func (c *Connection) Send(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := atomic.AddInt64(&c.nextID, 1)

	var rawParams json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		rawParams = encoded
	}

	ch := make(chan frame, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("connection closed")
	}
	c.pending[id] = ch
	err := c.conn.WriteJSON(frame{ID: id, Method: method, Params: rawParams})
	c.mu.Unlock()

	if err != nil {
		if c.onFailure != nil {
			c.onFailure()
		}
		return nil, fmt.Errorf("write devtools frame: %w", err)
	}

	select {
	case f, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("connection closed before response")
		}
		if f.Error != nil {
			return nil, fmt.Errorf("devtools error %d: %s", f.Error.Code, f.Error.Message)
		}
		return f.Result, nil
	case <-time.After(sendTimeout):
		return nil, fmt.Errorf("timed out waiting for response to %s", method)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
