package mav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrUnknownType   = errors.New("unknown field type")
	ErrBadFieldValue = errors.New("field value not encodable")
)

// FieldDef describes one field of a message definition, in XML declaration
// order. Type carries a MAVLink primitive type name, optionally with an
// inline "[N]" array suffix; alternatively ArrayLength marks the field as an
// array of Type's base. Extension fields only travel in v2 frames.
type FieldDef struct {
	Name        string
	Type        string
	ArrayLength int
	Extension   bool
}

var typeSizes = map[string]int{
	"uint8_t":  1,
	"int8_t":   1,
	"uint16_t": 2,
	"int16_t":  2,
	"uint32_t": 4,
	"int32_t":  4,
	"uint64_t": 8,
	"int64_t":  8,
	"float":    4,
	"double":   8,
	"char":     1,
}

// splitType separates an inline "[N]" suffix from a type string. The count is
// zero when no suffix is present.
func splitType(t string) (base string, count int) {
	open := strings.IndexByte(t, '[')
	if open < 0 || !strings.HasSuffix(t, "]") {
		return t, 0
	}
	n, err := strconv.Atoi(t[open+1 : len(t)-1])
	if err != nil || n <= 0 {
		return t[:open], 0
	}
	return t[:open], n
}

// BaseType returns the primitive type name with any array suffix removed.
func (f FieldDef) BaseType() string {
	base, _ := splitType(f.Type)
	return base
}

// Count returns the number of wire elements: the array length for array
// fields, 1 for scalars.
func (f FieldDef) Count() int {
	if f.ArrayLength >= 2 {
		return f.ArrayLength
	}
	if _, n := splitType(f.Type); n > 0 {
		return n
	}
	return 1
}

// IsArray reports whether the field occupies more than one element.
func (f FieldDef) IsArray() bool {
	return f.Count() > 1
}

// ElementSize returns the byte size of a single element. Array length does
// not factor in: the wire-order sort ranks fields by this value.
func (f FieldDef) ElementSize() int {
	return typeSizes[f.BaseType()]
}

// WireSize returns the total bytes the field occupies in an untruncated
// payload.
func (f FieldDef) WireSize() int {
	return f.ElementSize() * f.Count()
}

// SortFields returns the wire order of the given declaration-order fields:
// non-extension fields sorted stably by descending element size, followed by
// extension fields in declaration order. The input slice is not modified.
func SortFields(fields []FieldDef) []FieldDef {
	core := make([]FieldDef, 0, len(fields))
	ext := make([]FieldDef, 0)
	for _, f := range fields {
		if f.Extension {
			ext = append(ext, f)
		} else {
			core = append(core, f)
		}
	}
	sort.SliceStable(core, func(i, j int) bool {
		return core[i].ElementSize() > core[j].ElementSize()
	})
	return append(core, ext...)
}

// PayloadSize returns the full untruncated payload size of the field list.
func PayloadSize(fields []FieldDef) int {
	total := 0
	for _, f := range fields {
		total += f.WireSize()
	}
	return total
}

// CorePayloadSize returns the payload size excluding extension fields.
func CorePayloadSize(fields []FieldDef) int {
	total := 0
	for _, f := range fields {
		if !f.Extension {
			total += f.WireSize()
		}
	}
	return total
}

// DefaultValue returns the value a field assumes when absent from a payload:
// zero for numeric scalars, an empty string for char arrays, and an empty
// typed slice for other arrays.
func DefaultValue(f FieldDef) any {
	base := f.BaseType()
	if base == "char" {
		if f.IsArray() {
			return ""
		}
		return byte(0)
	}
	if f.IsArray() {
		return emptyArray(base)
	}
	return zeroScalar(base)
}

func zeroScalar(base string) any {
	switch base {
	case "uint8_t":
		return uint8(0)
	case "int8_t":
		return int8(0)
	case "uint16_t":
		return uint16(0)
	case "int16_t":
		return int16(0)
	case "uint32_t":
		return uint32(0)
	case "int32_t":
		return int32(0)
	case "uint64_t":
		return uint64(0)
	case "int64_t":
		return int64(0)
	case "float":
		return float32(0)
	case "double":
		return float64(0)
	}
	return nil
}

func emptyArray(base string) any {
	switch base {
	case "uint8_t":
		return []uint8{}
	case "int8_t":
		return []int8{}
	case "uint16_t":
		return []uint16{}
	case "int16_t":
		return []int16{}
	case "uint32_t":
		return []uint32{}
	case "int32_t":
		return []int32{}
	case "uint64_t":
		return []uint64{}
	case "int64_t":
		return []int64{}
	case "float":
		return []float32{}
	case "double":
		return []float64{}
	}
	return nil
}

// DecodePayload decodes data against the declaration-order field list and
// returns a value for every declared field. A payload shortened by v2
// truncation yields defaults for the missing tail; a field cut mid-element is
// decoded as if the missing bytes were zero.
func DecodePayload(data []byte, fields []FieldDef) map[string]any {
	out := make(map[string]any, len(fields))
	offset := 0
	for _, f := range SortFields(fields) {
		if offset >= len(data) {
			out[f.Name] = DefaultValue(f)
			continue
		}
		size := f.WireSize()
		chunk := data[offset:]
		if len(chunk) > size {
			chunk = chunk[:size]
		}
		if len(chunk) < size {
			padded := make([]byte, size)
			copy(padded, chunk)
			chunk = padded
		}
		out[f.Name] = decodeField(chunk, f)
		offset += size
	}
	return out
}

func decodeField(data []byte, f FieldDef) any {
	base := f.BaseType()
	if base == "char" {
		if !f.IsArray() {
			return data[0]
		}
		if idx := strings.IndexByte(string(data), 0); idx >= 0 {
			data = data[:idx]
		}
		return string(data)
	}
	if !f.IsArray() {
		return decodeScalar(data, base)
	}
	size := f.ElementSize()
	count := f.Count()
	switch base {
	case "uint8_t":
		out := make([]uint8, count)
		copy(out, data)
		return out
	case "int8_t":
		out := make([]int8, count)
		for i := range out {
			out[i] = int8(data[i])
		}
		return out
	case "uint16_t":
		out := make([]uint16, count)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(data[i*size:])
		}
		return out
	case "int16_t":
		out := make([]int16, count)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(data[i*size:]))
		}
		return out
	case "uint32_t":
		out := make([]uint32, count)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*size:])
		}
		return out
	case "int32_t":
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(data[i*size:]))
		}
		return out
	case "uint64_t":
		out := make([]uint64, count)
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(data[i*size:])
		}
		return out
	case "int64_t":
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(data[i*size:]))
		}
		return out
	case "float":
		out := make([]float32, count)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*size:]))
		}
		return out
	case "double":
		out := make([]float64, count)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*size:]))
		}
		return out
	}
	return nil
}

func decodeScalar(data []byte, base string) any {
	switch base {
	case "uint8_t":
		return data[0]
	case "int8_t":
		return int8(data[0])
	case "uint16_t":
		return binary.LittleEndian.Uint16(data)
	case "int16_t":
		return int16(binary.LittleEndian.Uint16(data))
	case "uint32_t":
		return binary.LittleEndian.Uint32(data)
	case "int32_t":
		return int32(binary.LittleEndian.Uint32(data))
	case "uint64_t":
		return binary.LittleEndian.Uint64(data)
	case "int64_t":
		return int64(binary.LittleEndian.Uint64(data))
	case "float":
		return math.Float32frombits(binary.LittleEndian.Uint32(data))
	case "double":
		return math.Float64frombits(binary.LittleEndian.Uint64(data))
	}
	return nil
}

// EncodePayload serializes the named values against the declaration-order
// field list. Missing fields encode as zero. When the message has extension
// fields and version is 2, trailing zero bytes of the extension region are
// truncated; the result never shrinks below the core payload size.
func EncodePayload(values map[string]any, fields []FieldDef, version int) ([]byte, error) {
	sorted := SortFields(fields)
	buf := make([]byte, PayloadSize(fields))
	offset := 0
	hasExt := false
	for _, f := range sorted {
		if f.Extension {
			hasExt = true
		}
		if v, ok := values[f.Name]; ok && v != nil {
			if err := encodeField(buf[offset:offset+f.WireSize()], f, v); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		offset += f.WireSize()
	}
	if version < 2 || !hasExt {
		return buf, nil
	}
	coreSize := CorePayloadSize(fields)
	trimmed := len(buf)
	for trimmed > coreSize && buf[trimmed-1] == 0 {
		trimmed--
	}
	return buf[:trimmed], nil
}

func encodeField(dst []byte, f FieldDef, v any) error {
	base := f.BaseType()
	if base == "char" {
		return encodeChar(dst, f, v)
	}
	if !f.IsArray() {
		return encodeScalar(dst, base, v)
	}
	return encodeArray(dst, f, base, v)
}

func encodeChar(dst []byte, f FieldDef, v any) error {
	if !f.IsArray() {
		switch c := v.(type) {
		case byte:
			dst[0] = c
		case rune:
			dst[0] = byte(c)
		case string:
			if len(c) > 0 {
				dst[0] = c[0]
			}
		default:
			return fmt.Errorf("%w: %T for char", ErrBadFieldValue, v)
		}
		return nil
	}
	s, ok := v.(string)
	if !ok {
		if b, isBytes := v.([]byte); isBytes {
			s = string(b)
		} else {
			return fmt.Errorf("%w: %T for char array", ErrBadFieldValue, v)
		}
	}
	// Overlong strings truncate; shorter strings leave the NUL padding in
	// place.
	copy(dst, s)
	return nil
}

func encodeScalar(dst []byte, base string, v any) error {
	switch base {
	case "float":
		fv, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrBadFieldValue, v, base)
		}
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(fv)))
		return nil
	case "double":
		fv, ok := toFloat64(v)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrBadFieldValue, v, base)
		}
		binary.LittleEndian.PutUint64(dst, math.Float64bits(fv))
		return nil
	}
	uv, ok := toUint64(v)
	if !ok {
		return fmt.Errorf("%w: %T for %s", ErrBadFieldValue, v, base)
	}
	switch typeSizes[base] {
	case 1:
		dst[0] = byte(uv)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(uv))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(uv))
	case 8:
		binary.LittleEndian.PutUint64(dst, uv)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownType, base)
	}
	return nil
}

func encodeArray(dst []byte, f FieldDef, base string, v any) error {
	size := f.ElementSize()
	count := f.Count()
	elems, err := arrayElements(v)
	if err != nil {
		return err
	}
	if len(elems) > count {
		elems = elems[:count]
	}
	for i, elem := range elems {
		if err := encodeScalar(dst[i*size:(i+1)*size], base, elem); err != nil {
			return err
		}
	}
	return nil
}

func arrayElements(v any) ([]any, error) {
	switch arr := v.(type) {
	case []any:
		return arr, nil
	case []uint8:
		return genericize(arr), nil
	case []int8:
		return genericize(arr), nil
	case []uint16:
		return genericize(arr), nil
	case []int16:
		return genericize(arr), nil
	case []uint32:
		return genericize(arr), nil
	case []int32:
		return genericize(arr), nil
	case []uint64:
		return genericize(arr), nil
	case []int64:
		return genericize(arr), nil
	case []int:
		return genericize(arr), nil
	case []float32:
		return genericize(arr), nil
	case []float64:
		return genericize(arr), nil
	}
	return nil, fmt.Errorf("%w: %T is not an array", ErrBadFieldValue, v)
}

func genericize[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case int8:
		return uint64(n), true
	case int16:
		return uint64(n), true
	case int32:
		return uint64(n), true
	case int64:
		return uint64(n), true
	case int:
		return uint64(n), true
	case float32:
		return uint64(int64(n)), true
	case float64:
		return uint64(int64(n)), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
