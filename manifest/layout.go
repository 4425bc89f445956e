package manifest

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/TheBitDrifter/depot"
)

// FieldType names the scalar encoding of one component field.
type FieldType string

const (
	F32 FieldType = "f32"
	F64 FieldType = "f64"
	I8  FieldType = "i8"
	U8  FieldType = "u8"
	I16 FieldType = "i16"
	U16 FieldType = "u16"
	I32 FieldType = "i32"
	U32 FieldType = "u32"
	I64 FieldType = "i64"
	U64 FieldType = "u64"
)

// Size returns the encoded width of t in bytes, or 0 for an unknown type.
func (t FieldType) Size() int {
	switch t {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case F32, I32, U32:
		return 4
	case F64, I64, U64:
		return 8
	}
	return 0
}

// FieldLayout locates one field inside a component record.
type FieldLayout struct {
	Name   string
	Type   FieldType
	Offset int
}

// Get decodes the field from a component record. Integers are widened to float64.
func (f FieldLayout) Get(record []byte) float64 {
	b := record[f.Offset : f.Offset+f.Type.Size()]
	switch f.Type {
	case F32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case I8:
		return float64(int8(b[0]))
	case U8:
		return float64(b[0])
	case I16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case U16:
		return float64(binary.LittleEndian.Uint16(b))
	case I32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case U32:
		return float64(binary.LittleEndian.Uint32(b))
	case I64:
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case U64:
		return float64(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// Put encodes v into the field of a component record, truncating toward zero for
// integer fields.
func (f FieldLayout) Put(record []byte, v float64) {
	b := record[f.Offset : f.Offset+f.Type.Size()]
	switch f.Type {
	case F32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case F64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	case I8:
		b[0] = byte(int8(v))
	case U8:
		b[0] = byte(v)
	case I16:
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case U16:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case I32:
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	case U32:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case I64:
		binary.LittleEndian.PutUint64(b, uint64(int64(v)))
	case U64:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
}

// Component is a manifest-declared component type. Fields are packed in
// declaration order with no padding.
type Component struct {
	key    depot.TypeKey
	size   int
	def    []byte
	fields []FieldLayout
}

var _ depot.Component = (*Component)(nil)

func compileComponent(decl ComponentSpec) (*Component, error) {
	c := &Component{key: depot.TypeKey(decl.Name)}
	seen := make(map[string]bool, len(decl.Fields))
	for _, field := range decl.Fields {
		if field.Name == "" {
			return nil, fmt.Errorf("component %s: field without a name", decl.Name)
		}
		if seen[field.Name] {
			return nil, fmt.Errorf("component %s: duplicate field %s", decl.Name, field.Name)
		}
		seen[field.Name] = true
		size := field.Type.Size()
		if size == 0 {
			return nil, fmt.Errorf("component %s: field %s has unknown type %q", decl.Name, field.Name, field.Type)
		}
		c.fields = append(c.fields, FieldLayout{Name: field.Name, Type: field.Type, Offset: c.size})
		c.size += size
	}
	if c.size == 0 {
		return nil, fmt.Errorf("component %s: no fields", decl.Name)
	}
	c.def = make([]byte, c.size)
	for i, field := range decl.Fields {
		c.fields[i].Put(c.def, field.Default)
	}
	return c, nil
}

func (c *Component) Key() depot.TypeKey {
	return c.key
}

func (c *Component) Size() int {
	return c.size
}

func (c *Component) DefaultBytes() []byte {
	return slices.Clone(c.def)
}

func (c *Component) Fields() []FieldLayout {
	return slices.Clone(c.fields)
}

func (c *Component) Field(name string) (FieldLayout, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

// Encode builds a full record from the defaults overlaid with values.
func (c *Component) Encode(values map[string]float64) ([]byte, error) {
	record := c.DefaultBytes()
	for name, v := range values {
		f, ok := c.Field(name)
		if !ok {
			return nil, fmt.Errorf("component %s has no field %s", c.key, name)
		}
		f.Put(record, v)
	}
	return record, nil
}
