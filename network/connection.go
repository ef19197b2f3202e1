package network

import (
	"bufio"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrMaxPeers  = errors.New("max peers reached")
	ErrQueueFull = errors.New("send queue full")
)

// PeerID uniquely identifies a connected peer
type PeerID uint32

// ConnState represents connection lifecycle state
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnected
	StateDisconnecting
)

// Peer is one remote table endpoint
type Peer struct {
	ID       PeerID
	Addr     string
	State    atomic.Uint32 // ConnState
	LastSeen atomic.Int64  // UnixNano

	// Client id announced in the hello, empty until received
	clientID atomic.Pointer[string]

	OutSeq atomic.Uint32
	InSeq  atomic.Uint32

	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	sendCh chan *Message

	closeCh   chan struct{}
	closeOnce sync.Once
}

func newPeer(id PeerID, conn net.Conn, sendQueueSize int) *Peer {
	p := &Peer{
		ID:      id,
		Addr:    conn.RemoteAddr().String(),
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, 16*1024),
		writer:  bufio.NewWriterSize(conn, 16*1024),
		sendCh:  make(chan *Message, sendQueueSize),
		closeCh: make(chan struct{}),
	}
	p.State.Store(uint32(StateConnected))
	p.LastSeen.Store(time.Now().UnixNano())
	return p
}

// ClientID returns the id from the peer's hello, or ""
func (p *Peer) ClientID() string {
	if s := p.clientID.Load(); s != nil {
		return *s
	}
	return ""
}

// Send queues a message for transmission
// Returns false if peer is disconnected or queue full
func (p *Peer) Send(msg *Message) bool {
	if ConnState(p.State.Load()) != StateConnected {
		return false
	}

	msg.Seq = p.OutSeq.Add(1)
	msg.Ack = p.InSeq.Load()

	select {
	case p.sendCh <- msg:
		return true
	default:
		return false
	}
}

// Close initiates shutdown
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		p.State.Store(uint32(StateDisconnecting))
		close(p.closeCh)
		p.conn.Close()
	})
}

func (p *Peer) readLoop(readTimeout time.Duration, handler func(*Peer, *Message)) {
	defer p.Close()

	for {
		select {
		case <-p.closeCh:
			return
		default:
		}

		if readTimeout > 0 {
			p.conn.SetReadDeadline(time.Now().Add(readTimeout))
		}
		msg, err := Decode(p.reader)
		if err != nil {
			return
		}

		p.LastSeen.Store(time.Now().UnixNano())
		if msg.Seq > p.InSeq.Load() {
			p.InSeq.Store(msg.Seq)
		}

		handler(p, msg)
	}
}

// writeLoop sends queued messages and a heartbeat when the queue is idle
func (p *Peer) writeLoop(heartbeat time.Duration) {
	defer p.Close()

	var tick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		var msg *Message
		select {
		case <-p.closeCh:
			return
		case msg = <-p.sendCh:
		case <-tick:
			msg = NewMessage(MsgHeartbeat, nil)
			msg.Seq = p.OutSeq.Add(1)
			msg.Ack = p.InSeq.Load()
		}
		if err := msg.Encode(p.writer); err != nil {
			return
		}
		if err := p.writer.Flush(); err != nil {
			return
		}
	}
}

// PeerManager handles multiple peer connections
type PeerManager struct {
	mu       sync.RWMutex
	peers    map[PeerID]*Peer
	nextID   atomic.Uint32
	maxPeers int
	config   *Config

	onConnect    func(PeerID)
	onDisconnect func(PeerID)
	onMessage    func(PeerID, *Message)
}

// NewPeerManager creates a peer manager
func NewPeerManager(cfg *Config) *PeerManager {
	return &PeerManager{
		peers:    make(map[PeerID]*Peer),
		maxPeers: cfg.MaxPeers,
		config:   cfg,
	}
}

// SetHandlers configures event callbacks
func (pm *PeerManager) SetHandlers(
	onConnect func(PeerID),
	onDisconnect func(PeerID),
	onMessage func(PeerID, *Message),
) {
	pm.onConnect = onConnect
	pm.onDisconnect = onDisconnect
	pm.onMessage = onMessage
}

// AddConnection registers a new peer from a raw connection
// Messages in first are queued ahead of anything sent from onConnect
func (pm *PeerManager) AddConnection(conn net.Conn, first ...*Message) (PeerID, error) {
	pm.mu.Lock()
	if pm.maxPeers > 0 && len(pm.peers) >= pm.maxPeers {
		pm.mu.Unlock()
		conn.Close()
		return 0, ErrMaxPeers
	}

	id := PeerID(pm.nextID.Add(1))
	peer := newPeer(id, conn, pm.config.SendQueueSize)
	for _, msg := range first {
		if !peer.Send(msg) {
			pm.mu.Unlock()
			conn.Close()
			return 0, ErrQueueFull
		}
	}
	pm.peers[id] = peer
	pm.mu.Unlock()

	go peer.readLoop(pm.config.ReadTimeout, pm.handleMessage)
	go peer.writeLoop(pm.config.HeartbeatInterval)
	go pm.monitorPeer(peer)

	if pm.onConnect != nil {
		pm.onConnect(id)
	}
	return id, nil
}

// handleMessage consumes control messages and routes the rest
func (pm *PeerManager) handleMessage(peer *Peer, msg *Message) {
	switch msg.Type {
	case MsgHeartbeat:
		return
	case MsgConnect:
		id := string(msg.Payload)
		peer.clientID.Store(&id)
	case MsgDisconnect:
		peer.Close()
		return
	}
	if pm.onMessage != nil {
		pm.onMessage(peer.ID, msg)
	}
}

func (pm *PeerManager) monitorPeer(peer *Peer) {
	<-peer.closeCh

	pm.mu.Lock()
	delete(pm.peers, peer.ID)
	pm.mu.Unlock()

	if pm.onDisconnect != nil {
		pm.onDisconnect(peer.ID)
	}
}

// Send transmits a message to a specific peer
func (pm *PeerManager) Send(id PeerID, msg *Message) bool {
	pm.mu.RLock()
	peer, ok := pm.peers[id]
	pm.mu.RUnlock()

	if !ok {
		return false
	}
	return peer.Send(msg)
}

// Broadcast sends a message to all connected peers
// Returns how many queued it and the peers that did not
func (pm *PeerManager) Broadcast(msg *Message) (int, []PeerID) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	sent := 0
	var missed []PeerID
	for id, peer := range pm.peers {
		// Clone for independent sequence numbers
		clone := *msg
		if peer.Send(&clone) {
			sent++
		} else {
			missed = append(missed, id)
		}
	}
	return sent, missed
}

// GetPeer retrieves a peer by ID
func (pm *PeerManager) GetPeer(id PeerID) (*Peer, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.peers[id]
	return p, ok
}

// PeerCount returns current connected peer count
func (pm *PeerManager) PeerCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Close disconnects all peers
func (pm *PeerManager) Close() {
	pm.mu.Lock()
	peers := pm.peers
	pm.peers = make(map[PeerID]*Peer)
	pm.mu.Unlock()

	for _, peer := range peers {
		peer.Close()
	}
}

// dial establishes a connection with optional TLS
func dial(addr string, cfg *Config) (net.Conn, error) {
	dialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}

	if cfg.TLS != nil {
		return tls.DialWithDialer(dialer, "tcp", addr, cfg.TLS)
	}
	return dialer.Dial("tcp", addr)
}
