package network

import (
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"sync/atomic"
)

// ErrNotRunning is returned by Redial before Start
var ErrNotRunning = errors.New("transport not running")

// Transport handles network I/O for a specific role
type Transport struct {
	config   *Config
	listener net.Listener
	peers    *PeerManager

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	dialMu  sync.Mutex
}

// NewTransport creates a transport with the given configuration
func NewTransport(cfg *Config) *Transport {
	return &Transport{
		config: cfg,
		peers:  NewPeerManager(cfg),
		stopCh: make(chan struct{}),
	}
}

// SetHandlers configures message and connection callbacks
func (t *Transport) SetHandlers(
	onConnect func(PeerID),
	onDisconnect func(PeerID),
	onMessage func(PeerID, *Message),
) {
	t.peers.SetHandlers(onConnect, onDisconnect, onMessage)
}

// Start begins listening (server) or connecting (client)
// A client that cannot reach the server stays running and may Redial later
func (t *Transport) Start() error {
	if !t.running.CompareAndSwap(false, true) {
		return nil
	}

	switch t.config.Role {
	case RoleServer:
		return t.startServer()
	case RoleClient:
		return t.Redial()
	default:
		return nil
	}
}

func (t *Transport) startServer() error {
	var ln net.Listener
	var err error

	if t.config.TLS != nil {
		ln, err = tls.Listen("tcp", t.config.Address, t.config.TLS)
	} else {
		ln, err = net.Listen("tcp", t.config.Address)
	}
	if err != nil {
		t.running.Store(false)
		return err
	}

	t.listener = ln

	t.wg.Add(1)
	go t.acceptLoop()
	return nil
}

func (t *Transport) acceptLoop() {
	defer t.wg.Done()

	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.stopCh:
				return
			default:
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					continue
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				continue
			}
		}

		t.Attach(conn)
	}
}

// Attach registers an established connection as a peer
func (t *Transport) Attach(conn net.Conn) (PeerID, error) {
	return t.peers.AddConnection(conn)
}

// Redial connects a client to its server when no connection is live
func (t *Transport) Redial() error {
	if !t.running.Load() {
		return ErrNotRunning
	}
	if t.config.Role != RoleClient {
		return nil
	}

	t.dialMu.Lock()
	defer t.dialMu.Unlock()

	if t.peers.PeerCount() > 0 {
		return nil
	}

	conn, err := dial(t.config.Address, t.config)
	if err != nil {
		return err
	}

	// Hello goes out before anything onConnect queues
	_, err = t.peers.AddConnection(conn, NewMessage(MsgConnect, []byte(t.config.ClientID)))
	return err
}

// Stop halts the transport
func (t *Transport) Stop() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil
	}

	close(t.stopCh)

	if t.listener != nil {
		t.listener.Close()
	}

	t.peers.Close()
	t.wg.Wait()
	return nil
}

// Addr returns the bound listener address, or nil when not serving
func (t *Transport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// Send transmits to a specific peer
func (t *Transport) Send(id PeerID, msg *Message) bool {
	return t.peers.Send(id, msg)
}

// Broadcast sends to all peers, reporting the peers whose queue rejected it
func (t *Transport) Broadcast(msg *Message) (int, []PeerID) {
	return t.peers.Broadcast(msg)
}

// Peer returns a connected peer
func (t *Transport) Peer(id PeerID) (*Peer, bool) {
	return t.peers.GetPeer(id)
}

// PeerCount returns connected peer count
func (t *Transport) PeerCount() int {
	return t.peers.PeerCount()
}

// Role returns the configured role
func (t *Transport) Role() Role {
	return t.config.Role
}

// IsRunning returns transport state
func (t *Transport) IsRunning() bool {
	return t.running.Load()
}
