package network

import (
	"net"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestTransportLoopback(t *testing.T) {
	scfg := DefaultConfig()
	scfg.Role = RoleServer
	scfg.Address = "127.0.0.1:0"

	server := NewTransport(scfg)
	connected := make(chan PeerID, 1)
	server.SetHandlers(func(id PeerID) { connected <- id }, nil, nil)
	if err := server.Start(); err != nil {
		t.Fatalf("server Start: %v", err)
	}
	defer server.Stop()

	ccfg := DefaultConfig()
	ccfg.Role = RoleClient
	ccfg.Address = server.Addr().String()
	ccfg.ClientID = "compass-test"

	client := NewTransport(ccfg)
	received := make(chan *Message, 4)
	client.SetHandlers(nil, nil, func(_ PeerID, m *Message) { received <- m })
	if err := client.Start(); err != nil {
		t.Fatalf("client Start: %v", err)
	}
	defer client.Stop()

	var id PeerID
	select {
	case id = <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("server saw no connection")
	}

	waitFor(t, "client hello", func() bool {
		p, ok := server.Peer(id)
		return ok && p.ClientID() == "compass-test"
	})

	payload, err := EncodeEntries("coral", []Entry{{Key: "position", Value: 4}})
	if err != nil {
		t.Fatalf("EncodeEntries: %v", err)
	}
	if n, missed := server.Broadcast(NewMessage(MsgSnapshot, payload)); n != 1 || len(missed) != 0 {
		t.Fatalf("Broadcast reached %d peers, missed %v", n, missed)
	}

	select {
	case m := <-received:
		if m.Type != MsgSnapshot {
			t.Fatalf("type = %v, want MsgSnapshot", m.Type)
		}
		_, entries, err := DecodeEntries(m.Payload)
		if err != nil || len(entries) != 1 || entries[0].Value != 4 {
			t.Errorf("entries = %v, err = %v", entries, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("client received nothing")
	}
}

func TestTransportDisconnectNotifies(t *testing.T) {
	scfg := DefaultConfig()
	scfg.Role = RoleServer
	scfg.Address = "127.0.0.1:0"

	server := NewTransport(scfg)
	gone := make(chan PeerID, 1)
	server.SetHandlers(nil, func(id PeerID) { gone <- id }, nil)
	if err := server.Start(); err != nil {
		t.Fatalf("server Start: %v", err)
	}
	defer server.Stop()

	ccfg := DefaultConfig()
	ccfg.Role = RoleClient
	ccfg.Address = server.Addr().String()
	client := NewTransport(ccfg)
	if err := client.Start(); err != nil {
		t.Fatalf("client Start: %v", err)
	}

	waitFor(t, "server peer", func() bool { return server.PeerCount() == 1 })
	client.Stop()

	select {
	case <-gone:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not notice disconnect")
	}
	waitFor(t, "peer removal", func() bool { return server.PeerCount() == 0 })
}

func TestClientStartWithoutServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Role = RoleClient
	cfg.Address = "127.0.0.1:1"
	cfg.ConnectTimeout = 200 * time.Millisecond

	tr := NewTransport(cfg)
	if err := tr.Start(); err == nil {
		t.Error("expected dial error")
	}
	if !tr.IsRunning() {
		t.Error("client should stay running for later redial")
	}
	tr.Stop()

	if err := tr.Redial(); err != ErrNotRunning {
		t.Errorf("Redial after Stop = %v, want ErrNotRunning", err)
	}
}

func TestRoleNoneIsNoop(t *testing.T) {
	tr := NewTransport(DefaultConfig())
	if err := tr.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tr.Addr() != nil {
		t.Error("RoleNone should not listen")
	}
	tr.Stop()
}

func TestClientHelloPrecedesConnectTraffic(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	cfg := DefaultConfig()
	cfg.Role = RoleClient
	cfg.Address = ln.Addr().String()
	cfg.ClientID = "compass-1"
	cfg.HeartbeatInterval = 0

	client := NewTransport(cfg)
	// A connect handler that immediately sends table data
	client.SetHandlers(func(id PeerID) {
		client.Send(id, NewMessage(MsgSnapshot, nil))
	}, nil, nil)
	if err := client.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer client.Stop()

	for round := 0; round < 2; round++ {
		if round > 0 {
			waitFor(t, "client to see the drop", func() bool { return client.PeerCount() == 0 })
			if err := client.Redial(); err != nil {
				t.Fatalf("Redial: %v", err)
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			t.Fatalf("Accept: %v", err)
		}
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))

		first, err := Decode(conn)
		if err != nil {
			t.Fatalf("round %d: Decode: %v", round, err)
		}
		if first.Type != MsgConnect || string(first.Payload) != "compass-1" {
			t.Fatalf("round %d: first frame = %v %q, want hello", round, first.Type, first.Payload)
		}
		second, err := Decode(conn)
		if err != nil {
			t.Fatalf("round %d: Decode: %v", round, err)
		}
		if second.Type != MsgSnapshot {
			t.Errorf("round %d: second frame = %v, want snapshot", round, second.Type)
		}
		conn.Close()
	}
}

func TestBroadcastReportsFullQueue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Role = RoleServer
	cfg.SendQueueSize = 1
	cfg.HeartbeatInterval = 0
	cfg.ReadTimeout = 0

	tr := NewTransport(cfg)
	local, remote := net.Pipe()
	defer remote.Close()

	id, err := tr.Attach(local)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	defer tr.Stop()

	// Nobody reads the pipe: one message blocks in the writer, one fills the queue
	var missed []PeerID
	for i := 0; i < 3 && len(missed) == 0; i++ {
		_, missed = tr.Broadcast(NewMessage(MsgEntryUpdate, nil))
	}
	if len(missed) != 1 || missed[0] != id {
		t.Fatalf("missed = %v, want [%d]", missed, id)
	}
}
