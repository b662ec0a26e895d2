// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jtok

import (
	"errors"
	"fmt"
)

// Type is the syntactic type of a token.
type Type byte

// Constants defining the valid Type values.
const (
	Undefined Type = iota // zero value, never produced by the parser
	Object                // object: { ... }
	Array                 // array: [ ... ]
	String                // quoted string
	Primitive             // number, true, false, null
)

var typeStr = [...]string{
	Undefined: "undefined",
	Object:    "object",
	Array:     "array",
	String:    "string",
	Primitive: "primitive",
}

func (t Type) String() string {
	v := int(t)
	if v >= len(typeStr) {
		return fmt.Sprintf("Type(%d)", v)
	}
	return typeStr[v]
}

// IsContainer reports whether t is Object or Array.
func (t Type) IsContainer() bool { return t == Object || t == Array }

// A Token records the location and type of one syntactic unit of the input.
//
// For a String token the span excludes the enclosing quotation marks; for an
// Object or Array it includes the brackets. End is -1 while the token is open,
// meaning its end has not yet been scanned.
//
// Size reports the number of members of an Object, or the number of elements
// of an Array. It is zero for strings and primitives.
type Token struct {
	Start int  // offset of the first byte, inclusive
	End   int  // offset of the last byte, exclusive; -1 if open
	Type  Type // the token type
	Size  int  // number of immediate children
}

// IsOpen reports whether the end of t has not yet been scanned.
func (t Token) IsOpen() bool { return t.End < 0 }

// Span returns the location span of t.
func (t Token) Span() Span { return Span{Pos: t.Start, End: t.End} }

// Text returns the slice of data spanned by t. For strings, the quotation
// marks are not included. Text returns nil if t is open.
func (t Token) Text(data []byte) []byte {
	if t.IsOpen() {
		return nil
	}
	return data[t.Start:t.End]
}

// Raw returns the complete source text of t in data, including the quotation
// marks of a string. Raw returns nil if t is open.
func (t Token) Raw(data []byte) []byte {
	if t.IsOpen() {
		return nil
	} else if t.Type == String {
		return data[t.Start-1 : t.End+1]
	}
	return data[t.Start:t.End]
}

func (t Token) String() string {
	return fmt.Sprintf("%v[%d:%d]#%d", t.Type, t.Start, t.End, t.Size)
}

var (
	// ErrInvalid is reported when the input is structurally invalid, for
	// example a closing bracket that does not match an open container.
	// A parser that reported ErrInvalid cannot be resumed.
	ErrInvalid = errors.New("invalid JSON input")

	// ErrNoMemory is reported when the token buffer has no room for another
	// token. The parser does not advance past the unit it could not record, so
	// the caller may retry with a larger buffer.
	ErrNoMemory = errors.New("not enough tokens")

	// ErrIncomplete is reported when the input ends before the current value
	// is complete. The caller may resume with a longer input that has the same
	// prefix.
	ErrIncomplete = errors.New("incomplete JSON input")
)
