// Package shape describes the wire layout of codecs as WIT types.
//
// Shapes are descriptive only: they are rendered by the inspector and used to
// compute lower bounds on encoded size. Encoding never consults them.
//
// Wire mapping:
//
//	bool        1 byte
//	u8          1 byte
//	s32         4 bytes little-endian (also used for enums)
//	string      s32 length + bytes
//	list<T>     s32 count + count × T
//	record      fields in declared order, no padding
//	variant     u8 tag + case payload
package shape

import (
	"strings"

	"go.bytecodealliance.org/wit"
)

// List returns the shape of a count-prefixed sequence of elem.
func List(elem wit.Type) wit.Type {
	return &wit.TypeDef{Kind: &wit.List{Type: elem}}
}

// Record returns the shape of fields encoded back to back in order.
func Record(fields ...wit.Field) wit.Type {
	return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}
}

// Field is a shorthand for a named record field.
func Field(name string, t wit.Type) wit.Field {
	return wit.Field{Name: name, Type: t}
}

// Variant returns the shape of a u8 tag followed by one case payload.
func Variant(cases ...wit.Case) wit.Type {
	return &wit.TypeDef{Kind: &wit.Variant{Cases: cases}}
}

// Case is a shorthand for a named variant case.
func Case(name string, t wit.Type) wit.Case {
	return wit.Case{Name: name, Type: t}
}

// String renders t in WIT-like syntax.
func String(t wit.Type) string {
	switch v := t.(type) {
	case nil:
		return "_"
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		return typeDefString(v)
	default:
		return "?"
	}
}

func typeDefString(td *wit.TypeDef) string {
	switch k := td.Kind.(type) {
	case *wit.List:
		return "list<" + String(k.Type) + ">"
	case *wit.Record:
		parts := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			parts[i] = f.Name + ": " + String(f.Type)
		}
		return "record { " + strings.Join(parts, ", ") + " }"
	case *wit.Variant:
		parts := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			if c.Type == nil {
				parts[i] = c.Name
				continue
			}
			parts[i] = c.Name + "(" + String(c.Type) + ")"
		}
		return "variant { " + strings.Join(parts, ", ") + " }"
	case *wit.Enum:
		names := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			names[i] = c.Name
		}
		return "enum { " + strings.Join(names, ", ") + " }"
	case wit.Type:
		return String(k)
	default:
		return "?"
	}
}

// MinSize returns the smallest number of bytes a value of shape t can occupy
// on the wire. Lists and strings count only their prefix.
func MinSize(t wit.Type) int {
	switch v := t.(type) {
	case wit.Bool, wit.U8, wit.S8:
		return 1
	case wit.U16, wit.S16:
		return 2
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return 4
	case wit.U64, wit.S64, wit.F64:
		return 8
	case wit.String:
		return 4
	case *wit.TypeDef:
		return typeDefMinSize(v)
	default:
		return 0
	}
}

func typeDefMinSize(td *wit.TypeDef) int {
	switch k := td.Kind.(type) {
	case *wit.List:
		return 4
	case *wit.Record:
		n := 0
		for _, f := range k.Fields {
			n += MinSize(f.Type)
		}
		return n
	case *wit.Variant:
		smallest := -1
		for _, c := range k.Cases {
			n := 0
			if c.Type != nil {
				n = MinSize(c.Type)
			}
			if smallest < 0 || n < smallest {
				smallest = n
			}
		}
		if smallest < 0 {
			smallest = 0
		}
		return 1 + smallest
	case *wit.Enum:
		return 4
	case wit.Type:
		return MinSize(k)
	default:
		return 0
	}
}

// Fixed reports whether every value of shape t has the same encoded size.
func Fixed(t wit.Type) bool {
	switch v := t.(type) {
	case wit.String:
		return false
	case *wit.TypeDef:
		switch k := v.Kind.(type) {
		case *wit.List, *wit.Variant:
			return false
		case *wit.Record:
			for _, f := range k.Fields {
				if !Fixed(f.Type) {
					return false
				}
			}
			return true
		case wit.Type:
			return Fixed(k)
		}
		return true
	default:
		return true
	}
}
