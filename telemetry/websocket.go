package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// Update is the JSON document sent to dashboard clients
type Update struct {
	Table   string  `json:"table"`
	Entries []Entry `json:"entries"`
	Time    int64   `json:"time"` // Unix milliseconds
}

// WebsocketPublisher serves table updates to browser dashboards
type WebsocketPublisher struct {
	addr string
	srv  *http.Server
	ln   net.Listener

	// sendMu orders the late-joiner replay against broadcasts
	sendMu  sync.Mutex
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    []byte // Most recent update, sent to late joiners

	now func() time.Time
}

// NewWebsocketPublisher creates a publisher listening on addr
func NewWebsocketPublisher(addr string) *WebsocketPublisher {
	p := &WebsocketPublisher{
		addr:    addr,
		clients: make(map[*websocket.Conn]struct{}),
		now:     time.Now,
	}
	p.srv = &http.Server{
		Handler:           p.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return p
}

// Handler routes /ws and /health
func (p *WebsocketPublisher) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", p.handleWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Name implements Publisher and service.Service
func (p *WebsocketPublisher) Name() string {
	return "websocket"
}

// Dependencies implements service.Service
func (p *WebsocketPublisher) Dependencies() []string {
	return nil
}

// Start binds the listener and serves in the background
func (p *WebsocketPublisher) Start() error {
	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return err
	}
	p.ln = ln

	go func() {
		if err := p.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("websocket: serve: %v", err)
		}
	}()
	log.Printf("websocket: listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound address once started
func (p *WebsocketPublisher) Addr() net.Addr {
	if p.ln == nil {
		return nil
	}
	return p.ln.Addr()
}

// Stop closes every client and the HTTP server
func (p *WebsocketPublisher) Stop() error {
	p.mu.Lock()
	for c := range p.clients {
		c.Close(websocket.StatusGoingAway, "shutting down")
		delete(p.clients, c)
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.srv.Shutdown(ctx)
}

// Publish sends the entries to every connected client
func (p *WebsocketPublisher) Publish(ctx context.Context, table string, entries []Entry) error {
	payload, err := json.Marshal(Update{Table: table, Entries: entries, Time: p.now().UnixMilli()})
	if err != nil {
		return err
	}

	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	p.last = payload
	conns := make([]*websocket.Conn, 0, len(p.clients))
	for c := range p.clients {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	for _, c := range conns {
		if err := c.Write(ctx, websocket.MessageText, payload); err != nil {
			p.remove(c)
			c.Close(websocket.StatusInternalError, "write failed")
		}
	}
	return nil
}

// ClientCount returns the number of connected dashboards
func (p *WebsocketPublisher) ClientCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

func (p *WebsocketPublisher) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("websocket: accept: %v", err)
		return
	}

	if err := p.join(r.Context(), conn); err != nil {
		conn.Close(websocket.StatusInternalError, "write failed")
		return
	}

	// Dashboards only listen; CloseRead handles control frames until they leave
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()
	p.remove(conn)
	conn.Close(websocket.StatusNormalClosure, "")
}

// join replays the last update and registers conn, with no broadcast in between
func (p *WebsocketPublisher) join(ctx context.Context, conn *websocket.Conn) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.mu.Lock()
	last := p.last
	p.mu.Unlock()

	if last != nil {
		wctx, cancel := context.WithTimeout(ctx, time.Second)
		err := conn.Write(wctx, websocket.MessageText, last)
		cancel()
		if err != nil {
			return err
		}
	}

	p.mu.Lock()
	p.clients[conn] = struct{}{}
	p.mu.Unlock()
	return nil
}

func (p *WebsocketPublisher) remove(c *websocket.Conn) {
	p.mu.Lock()
	delete(p.clients, c)
	p.mu.Unlock()
}
