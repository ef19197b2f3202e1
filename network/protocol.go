package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MessageType identifies the semantic meaning of a message
type MessageType uint8

const (
	// Control messages
	MsgHeartbeat  MessageType = 0x01
	MsgConnect    MessageType = 0x02 // Hello; payload is the client id
	MsgDisconnect MessageType = 0x03
	MsgAck        MessageType = 0x04

	// Table messages
	MsgEntryUpdate MessageType = 0x10 // Changed entries
	MsgSnapshot    MessageType = 0x11 // Every entry, sent to new peers
)

// HeaderSize is the fixed header preceding every message
// [Type:1][Flags:1][Seq:4][Ack:4][Len:2]
const HeaderSize = 12

// MaxPayload is the largest payload a header can describe
const MaxPayload = math.MaxUint16

// Header flags
const (
	FlagNone    uint8 = 0x00
	FlagNeedAck uint8 = 0x01 // Sender expects acknowledgment
)

var (
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")
	ErrMalformed       = errors.New("malformed entry payload")
)

// Message represents a framed network message
type Message struct {
	Type    MessageType
	Flags   uint8
	Seq     uint32 // Sender's sequence number
	Ack     uint32 // Last received sequence from peer
	Payload []byte
}

// Encode writes the header and payload
func (m *Message) Encode(w io.Writer) error {
	payloadLen := len(m.Payload)
	if payloadLen > MaxPayload {
		return ErrPayloadTooLarge
	}

	header := make([]byte, HeaderSize)
	header[0] = byte(m.Type)
	header[1] = m.Flags
	binary.BigEndian.PutUint32(header[2:6], m.Seq)
	binary.BigEndian.PutUint32(header[6:10], m.Ack)
	binary.BigEndian.PutUint16(header[10:12], uint16(payloadLen))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if payloadLen > 0 {
		if _, err := w.Write(m.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads one message
func Decode(r io.Reader) (*Message, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	m := &Message{
		Type:  MessageType(header[0]),
		Flags: header[1],
		Seq:   binary.BigEndian.Uint32(header[2:6]),
		Ack:   binary.BigEndian.Uint32(header[6:10]),
	}

	if payloadLen := binary.BigEndian.Uint16(header[10:12]); payloadLen > 0 {
		m.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, m.Payload); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewMessage creates a message with the given type and payload
func NewMessage(t MessageType, payload []byte) *Message {
	return &Message{
		Type:    t,
		Flags:   FlagNone,
		Payload: payload,
	}
}

// Entry is one named number in a table
type Entry struct {
	Key   string
	Value float64
}

// EncodeEntries packs a table name and entries
// [tableLen:1][table][count:2] then per entry [keyLen:1][key][float64 bits:8]
func EncodeEntries(table string, entries []Entry) ([]byte, error) {
	if len(table) > math.MaxUint8 {
		return nil, fmt.Errorf("table name %q too long", table)
	}
	if len(entries) > math.MaxUint16 {
		return nil, fmt.Errorf("%d entries: %w", len(entries), ErrPayloadTooLarge)
	}

	size := 1 + len(table) + 2
	for _, e := range entries {
		if len(e.Key) > math.MaxUint8 {
			return nil, fmt.Errorf("entry key %q too long", e.Key)
		}
		size += 1 + len(e.Key) + 8
	}
	if size > MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, 0, size)
	buf = append(buf, byte(len(table)))
	buf = append(buf, table...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(entries)))
	for _, e := range entries {
		buf = append(buf, byte(len(e.Key)))
		buf = append(buf, e.Key...)
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(e.Value))
	}
	return buf, nil
}

// DecodeEntries unpacks a payload produced by EncodeEntries
func DecodeEntries(p []byte) (string, []Entry, error) {
	if len(p) < 1 {
		return "", nil, ErrMalformed
	}
	n := int(p[0])
	p = p[1:]
	if len(p) < n+2 {
		return "", nil, ErrMalformed
	}
	table := string(p[:n])
	count := int(binary.BigEndian.Uint16(p[n : n+2]))
	p = p[n+2:]

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		if len(p) < 1 {
			return "", nil, ErrMalformed
		}
		kl := int(p[0])
		p = p[1:]
		if len(p) < kl+8 {
			return "", nil, ErrMalformed
		}
		entries = append(entries, Entry{
			Key:   string(p[:kl]),
			Value: math.Float64frombits(binary.BigEndian.Uint64(p[kl : kl+8])),
		})
		p = p[kl+8:]
	}
	if len(p) != 0 {
		return "", nil, ErrMalformed
	}
	return table, entries, nil
}
