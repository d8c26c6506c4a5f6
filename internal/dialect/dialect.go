package dialect

import (
	"errors"
	"fmt"
	"sort"

	"example.com/mavgate/internal/mav"
)

var (
	ErrDuplicateID     = errors.New("duplicate message id")
	ErrDuplicateName   = errors.New("duplicate message name")
	ErrBadDefinition   = errors.New("invalid message definition")
	ErrMissingCRCExtra = errors.New("missing crc extra for message id")
)

// Message is one message definition: numeric id, unique name, and fields in
// XML declaration order. Extension fields must follow every non-extension
// field in that order.
type Message struct {
	ID     uint32
	Name   string
	Fields []mav.FieldDef
}

// PayloadSize returns the full untruncated payload size.
func (m *Message) PayloadSize() int {
	return mav.PayloadSize(m.Fields)
}

// CorePayloadSize returns the payload size excluding extension fields.
func (m *Message) CorePayloadSize() int {
	return mav.CorePayloadSize(m.Fields)
}

// Dialect is an immutable message catalog: definitions keyed by id and by
// name, plus the CRC_EXTRA seed for every id. Construction validates the
// catalog invariants; a Dialect may be shared across engine instances.
type Dialect struct {
	name      string
	byID      map[uint32]*Message
	byName    map[string]*Message
	crcExtras map[uint32]uint8
}

// New builds a validated catalog from definitions and their CRC_EXTRA seeds.
func New(name string, messages []Message, crcExtras map[uint32]uint8) (*Dialect, error) {
	d := &Dialect{
		name:      name,
		byID:      make(map[uint32]*Message, len(messages)),
		byName:    make(map[string]*Message, len(messages)),
		crcExtras: make(map[uint32]uint8, len(messages)),
	}
	for i := range messages {
		msg := messages[i]
		if msg.Name == "" {
			return nil, fmt.Errorf("%w: message %d has no name", ErrBadDefinition, msg.ID)
		}
		if _, exists := d.byID[msg.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, msg.ID)
		}
		if _, exists := d.byName[msg.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, msg.Name)
		}
		if err := validateFields(&msg); err != nil {
			return nil, fmt.Errorf("message %s: %w", msg.Name, err)
		}
		extra, ok := crcExtras[msg.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %d (%s)", ErrMissingCRCExtra, msg.ID, msg.Name)
		}
		d.byID[msg.ID] = &msg
		d.byName[msg.Name] = &msg
		d.crcExtras[msg.ID] = extra
	}
	return d, nil
}

func validateFields(msg *Message) error {
	extensionSeen := false
	for _, f := range msg.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: unnamed field", ErrBadDefinition)
		}
		if f.ElementSize() == 0 {
			return fmt.Errorf("%w: field %s has unknown type %q", ErrBadDefinition, f.Name, f.Type)
		}
		if f.ArrayLength != 0 {
			if f.ArrayLength < 2 {
				return fmt.Errorf("%w: field %s array length %d", ErrBadDefinition, f.Name, f.ArrayLength)
			}
			if f.BaseType() != f.Type {
				return fmt.Errorf("%w: field %s has both array length and inline suffix", ErrBadDefinition, f.Name)
			}
		}
		if f.Extension {
			extensionSeen = true
		} else if extensionSeen {
			return fmt.Errorf("%w: field %s declared after extensions", ErrBadDefinition, f.Name)
		}
	}
	return nil
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return d.name
}

// MessageByID returns the definition registered for id.
func (d *Dialect) MessageByID(id uint32) (*Message, bool) {
	msg, ok := d.byID[id]
	return msg, ok
}

// MessageByName returns the definition registered under name.
func (d *Dialect) MessageByName(name string) (*Message, bool) {
	msg, ok := d.byName[name]
	return msg, ok
}

// SupportsID reports whether id is in the catalog.
func (d *Dialect) SupportsID(id uint32) bool {
	_, ok := d.byID[id]
	return ok
}

// SupportsName reports whether name is in the catalog.
func (d *Dialect) SupportsName(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// IDs returns the registered message ids in ascending order.
func (d *Dialect) IDs() []uint32 {
	ids := make([]uint32, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Names returns the registered message names in ascending order.
func (d *Dialect) Names() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CRCExtra returns the CRC_EXTRA seed for id.
func (d *Dialect) CRCExtra(id uint32) (uint8, bool) {
	extra, ok := d.crcExtras[id]
	return extra, ok
}

// CRCTable returns the id to CRC_EXTRA mapping consumed by the framer.
// Callers must treat the map as read-only.
func (d *Dialect) CRCTable() map[uint32]uint8 {
	return d.crcExtras
}
