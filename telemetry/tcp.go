package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/lixenwraith/coral-compass/network"
)

var (
	// ErrNoPeers is returned when a client publisher has no server connection
	ErrNoPeers = errors.New("no connected peers")
	// ErrPeersBehind is returned while some peer still waits for a resync snapshot
	ErrPeersBehind = errors.New("peers behind")
)

// TCPPublisher sends table changes over the framed TCP protocol
// As server it accepts dashboards; as client it pushes to a table server
type TCPPublisher struct {
	transport *network.Transport

	// Held across sends so snapshots and deltas reach each peer in order
	mu     sync.Mutex
	name   string
	last   map[string]float64 // Values already sent
	snap   []Entry
	behind map[network.PeerID]struct{} // Peers that missed a delta
}

// NewTCPPublisher creates a publisher over a transport built from cfg
func NewTCPPublisher(cfg *network.Config) *TCPPublisher {
	p := &TCPPublisher{
		transport: network.NewTransport(cfg),
		last:      make(map[string]float64),
		behind:    make(map[network.PeerID]struct{}),
	}
	p.transport.SetHandlers(p.onConnect, p.onDisconnect, nil)
	return p
}

// Name implements Publisher and service.Service
func (p *TCPPublisher) Name() string {
	return "tcp"
}

// Dependencies implements service.Service
func (p *TCPPublisher) Dependencies() []string {
	return nil
}

// Start listens or dials; a client that cannot reach its server retries on publish
func (p *TCPPublisher) Start() error {
	err := p.transport.Start()
	if err != nil && p.transport.Role() == network.RoleClient {
		log.Printf("tcp: server unreachable, will retry: %v", err)
		return nil
	}
	if addr := p.transport.Addr(); addr != nil {
		log.Printf("tcp: listening on %s", addr)
	}
	return err
}

// Stop implements service.Service
func (p *TCPPublisher) Stop() error {
	return p.transport.Stop()
}

// Transport exposes the underlying transport
func (p *TCPPublisher) Transport() *network.Transport {
	return p.transport
}

// Publish broadcasts the entries whose values changed since the last publish
// A peer whose queue rejects a delta is resynced with a snapshot on later calls
func (p *TCPPublisher) Publish(ctx context.Context, table string, entries []Entry) error {
	if p.transport.Role() == network.RoleClient && p.transport.PeerCount() == 0 {
		if err := p.transport.Redial(); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.name = table
	p.snap = entries
	var changed []Entry
	for _, e := range entries {
		if v, ok := p.last[e.Key]; !ok || v != e.Value {
			changed = append(changed, e)
			p.last[e.Key] = e.Value
		}
	}

	if len(changed) > 0 {
		payload, err := network.EncodeEntries(table, toWire(changed))
		if err != nil {
			return err
		}
		sent, missed := p.transport.Broadcast(network.NewMessage(network.MsgEntryUpdate, payload))
		for _, id := range missed {
			p.behind[id] = struct{}{}
		}
		if sent == 0 && len(missed) == 0 && p.transport.Role() == network.RoleClient {
			return ErrNoPeers
		}
	}

	for id := range p.behind {
		if _, ok := p.transport.Peer(id); !ok || p.sendSnapshot(id) {
			delete(p.behind, id)
		}
	}
	if n := len(p.behind); n > 0 {
		return fmt.Errorf("%w: %d awaiting snapshot", ErrPeersBehind, n)
	}
	return nil
}

// sendSnapshot queues the full table for one peer; caller holds p.mu
func (p *TCPPublisher) sendSnapshot(id network.PeerID) bool {
	if p.snap == nil {
		return true
	}
	payload, err := network.EncodeEntries(p.name, toWire(p.snap))
	if err != nil {
		log.Printf("tcp: snapshot for peer %d: %v", id, err)
		return true
	}
	return p.transport.Send(id, network.NewMessage(network.MsgSnapshot, payload))
}

// onConnect sends the full table so new peers start in sync
func (p *TCPPublisher) onConnect(id network.PeerID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sendSnapshot(id) {
		p.behind[id] = struct{}{}
	}
}

func (p *TCPPublisher) onDisconnect(id network.PeerID) {
	p.mu.Lock()
	delete(p.behind, id)
	p.mu.Unlock()
	log.Printf("tcp: peer %d disconnected", id)
}
