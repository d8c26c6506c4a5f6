package dialect

import (
	"errors"
	"fmt"
	"time"

	"example.com/mavgate/internal/mav"
)

var (
	ErrUnknownMessage   = errors.New("message name not in dialect")
	ErrMalformedMessage = errors.New("message payload missing or not a mapping")
)

const (
	defaultSystemID    = 1
	defaultComponentID = 1
)

// OutgoingMessage is the caller-facing shape handed to Serialize: a message
// name from the catalog plus named field values. Zero SystemID/ComponentID
// fall back to 1/1; zero Protocol selects v2 exactly when the id needs it.
type OutgoingMessage struct {
	Name        string         `json:"message_name"`
	Payload     map[string]any `json:"payload"`
	SystemID    uint8          `json:"system_id,omitempty"`
	ComponentID uint8          `json:"component_id,omitempty"`
	Sequence    uint8          `json:"sequence,omitempty"`
	Protocol    int            `json:"protocol_version,omitempty"`
}

// ParsedMessage is frame metadata plus the decoded field values.
type ParsedMessage struct {
	Name        string         `json:"message_name"`
	ID          uint32         `json:"message_id"`
	Payload     map[string]any `json:"payload"`
	SystemID    uint8          `json:"system_id"`
	ComponentID uint8          `json:"component_id"`
	Sequence    uint8          `json:"sequence"`
	Protocol    int            `json:"protocol_version"`
	CRCOK       bool           `json:"crc_ok"`
	Checksum    uint16         `json:"checksum"`
	Signature   []byte         `json:"signature,omitempty"`
	Dialect     string         `json:"dialect"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Engine composes the framer, codec and checksum around one catalog and one
// stream buffer. The buffer is exclusively owned: an Engine is not safe for
// concurrent use, callers needing parallelism run one engine per producer.
type Engine struct {
	dialect *Dialect
	buf     *mav.StreamBuffer
}

// NewEngine returns an engine over the given catalog with an empty stream
// buffer.
func NewEngine(d *Dialect) *Engine {
	return &Engine{dialect: d, buf: mav.NewStreamBuffer()}
}

// Dialect returns the engine's catalog.
func (e *Engine) Dialect() *Dialect {
	return e.dialect
}

// ParseBytes appends data to the stream buffer and extracts every complete
// frame, in stream order. Frames with failing checksums are included with
// CRCOK unset. Unconsumed trailing bytes stay buffered for the next call.
func (e *Engine) ParseBytes(data []byte) []ParsedMessage {
	e.buf.Append(data)
	var out []ParsedMessage
	for e.buf.Len() > 0 {
		frame, consumed := mav.ParseFrame(e.buf.Contents(), e.dialect.CRCTable())
		if frame == nil && consumed == 0 {
			break
		}
		e.buf.Consume(consumed)
		if frame != nil {
			out = append(out, e.Decode(frame))
		}
	}
	return out
}

// Decode turns a frame into a ParsedMessage. Ids absent from the catalog
// produce a synthetic UNKNOWN_<id> message carrying the raw payload, with the
// frame's checksum verdict preserved.
func (e *Engine) Decode(frame *mav.Frame) ParsedMessage {
	parsed := ParsedMessage{
		ID:          frame.MessageID,
		SystemID:    frame.SystemID,
		ComponentID: frame.ComponentID,
		Sequence:    frame.Sequence,
		Protocol:    frame.Protocol(),
		CRCOK:       frame.CRCOK,
		Checksum:    frame.Checksum,
		Signature:   frame.Signature,
		Dialect:     e.dialect.Name(),
		Timestamp:   time.Now(),
	}
	def, ok := e.dialect.MessageByID(frame.MessageID)
	if !ok {
		parsed.Name = fmt.Sprintf("UNKNOWN_%d", frame.MessageID)
		parsed.Payload = map[string]any{"raw_payload": frame.Payload}
		return parsed
	}
	parsed.Name = def.Name
	parsed.Payload = mav.DecodePayload(frame.Payload, def.Fields)
	return parsed
}

// Serialize encodes msg into a wire frame. Fields missing from the payload
// encode as their defaults.
func (e *Engine) Serialize(msg OutgoingMessage) ([]byte, error) {
	def, ok := e.dialect.MessageByName(msg.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Name)
	}
	if msg.Payload == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedMessage, msg.Name)
	}
	crcExtra, ok := e.dialect.CRCExtra(def.ID)
	if !ok {
		// The constructor guarantees a seed per id; hitting this means the
		// catalog was built outside New.
		return nil, fmt.Errorf("%w: %d", ErrMissingCRCExtra, def.ID)
	}
	version := msg.Protocol
	if version == 0 {
		version = 1
		if def.ID > mav.MaxIDV1 {
			version = 2
		}
	}
	payload, err := mav.EncodePayload(msg.Payload, def.Fields, version)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", msg.Name, err)
	}
	systemID := msg.SystemID
	if systemID == 0 {
		systemID = defaultSystemID
	}
	componentID := msg.ComponentID
	if componentID == 0 {
		componentID = defaultComponentID
	}
	return mav.CreateFrame(def.ID, payload, systemID, componentID, msg.Sequence, crcExtra, version), nil
}

// Complete returns a copy of msg whose payload carries a value for every
// declared field, visiting fields in wire order. The input is not modified.
func (e *Engine) Complete(msg OutgoingMessage) (OutgoingMessage, error) {
	def, ok := e.dialect.MessageByName(msg.Name)
	if !ok {
		return msg, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Name)
	}
	filled := make(map[string]any, len(def.Fields))
	for _, f := range mav.SortFields(def.Fields) {
		if v, ok := msg.Payload[f.Name]; ok && v != nil {
			filled[f.Name] = v
			continue
		}
		filled[f.Name] = mav.DefaultValue(f)
	}
	out := msg
	out.Payload = filled
	return out, nil
}

// ResetBuffer drops any partially received bytes.
func (e *Engine) ResetBuffer() {
	e.buf.Reset()
}
