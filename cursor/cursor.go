// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the tokens of a JSON value.
//
// A cursor navigates the flat token sequence produced by a jtok.Parser
// without building a tree: the children of an object or array are the tokens
// within its span, and jtok.Skip steps from one child to the next.
package cursor

import (
	"fmt"
	"iter"

	"github.com/creachadair/jtok"
	"go4.org/mem"
)

// A Func is a path element that computes the next location from the current
// one. It receives the input text, the tokens, and the index of the current
// token, and returns the index of the next token.
type Func = func(data []byte, toks []jtok.Token, i int) (int, error)

// Path traverses a sequential path into the structure of the value at toks[0]
// where path elements are as documented for the Cursor.Down method. This is a
// convenience wrapper for creating a cursor, applying path, and retrieving its
// token.
func Path(data []byte, toks []jtok.Token, path ...any) (jtok.Token, error) {
	c := New(data, toks).Down(path...)
	if err := c.Err(); err != nil {
		return jtok.Token{}, err
	}
	return c.Value(), nil
}

// A Cursor is a pointer that navigates into the structure of a tokenized JSON
// value.
type Cursor struct {
	data []byte
	toks []jtok.Token
	org  int
	stk  []int
	err  error
}

// New constructs a new Cursor to traverse the value whose token is toks[0].
// It panics if toks is empty.
func New(data []byte, toks []jtok.Token) *Cursor { return NewAt(data, toks, 0) }

// NewAt constructs a new Cursor to traverse the value whose token is toks[i].
// It panics if i is not a valid index of toks.
func NewAt(data []byte, toks []jtok.Token, i int) *Cursor {
	if i < 0 || i >= len(toks) {
		panic(fmt.Sprintf("cursor: origin %d out of range (n=%d)", i, len(toks)))
	}
	return &Cursor{data: data, toks: toks, org: i}
}

// Origin returns the token index of the origin of c.
func (c *Cursor) Origin() int { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Index reports the token index of the current location.
func (c *Cursor) Index() int {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Value reports the token of the value at the current location.
func (c *Cursor) Value() jtok.Token { return c.toks[c.Index()] }

// Text reports the source text of the current value, including quotation
// marks if it is a string.
func (c *Cursor) Text() []byte { return c.Value().Raw(c.data) }

// Path reports the token indices of the complete sequence of values from the
// origin to the current location in c.
func (c *Cursor) Path() []int {
	return append([]int{c.org}, c.stk...)
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from the
// current value, where path elements are either strings (denoting object
// keys), integers (denoting offsets into arrays or objects), functions of type
// Func, or nil. If the path cannot be completely consumed, traversal stops and
// an error is recorded. Use Err to recover the error.
//
// If a path element is a string, the current value must be an object, and the
// string selects the value of the first member with that key.
//
// If a path element is an integer, the current value must be an array or
// object, and the integer selects an element of the array or the value of a
// member of the object. Negative indices count backward from the end (-1 is
// last, -2 second last). An error is reported if the index is out of bounds.
//
// If a path element is a Func, it is called with the current location and its
// result becomes the next location. If it reports an error, traversal stops
// and the error is recorded.
//
// A nil path element does nothing.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Index()
	for _, elt := range path {
		tok := c.toks[cur]
		switch t := elt.(type) {
		case string:
			if tok.Type != jtok.Object {
				return c.setErrorf("cannot traverse %v with %q", tok.Type, t)
			}
			v, ok := Find(c.data, c.toks, cur, t)
			if !ok {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(v)

		case int:
			if !tok.Type.IsContainer() {
				return c.setErrorf("cannot traverse %v with %v", tok.Type, t)
			}
			i, ok := fixArrayBound(tok.Size, t)
			if !ok {
				return c.setErrorf("%v index %d out of bounds (n=%d)", tok.Type, i, tok.Size)
			}
			v, ok := nth(c.toks, cur, i)
			if !ok {
				return c.setErrorf("%v index %d not found", tok.Type, i)
			}
			cur = c.push(v)

		case Func:
			next, err := t(c.data, c.toks, cur)
			if err != nil {
				c.err = err
				return c
			} else if next < 0 || next >= len(c.toks) {
				return c.setErrorf("function result %d out of range (n=%d)", next, len(c.toks))
			}
			cur = c.push(next)

		case nil:
			// Do nothing.

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(i int) int { c.stk = append(c.stk, i); return i }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

// nth returns the index of the ith element of the array, or the ith member
// value of the object, whose token is toks[i].
func nth(toks []jtok.Token, at, i int) (int, bool) {
	if toks[at].Type == jtok.Object {
		for _, v := range Members(toks, at) {
			if i == 0 {
				return v, true
			}
			i--
		}
		return 0, false
	}
	for v := range Elements(toks, at) {
		if i == 0 {
			return v, true
		}
		i--
	}
	return 0, false
}

// Find returns the token index of the value of the first member of the object
// at toks[i] whose key is key, and reports whether such a member was found.
// Keys containing escape sequences are decoded before comparison.
func Find(data []byte, toks []jtok.Token, i int, key string) (int, bool) {
	for k, v := range Members(toks, i) {
		if keyEqual(data, toks[k], key) {
			return v, true
		}
	}
	return 0, false
}

func keyEqual(data []byte, t jtok.Token, key string) bool {
	if t.Type != jtok.String || t.IsOpen() {
		return false
	}
	text := mem.B(t.Text(data))
	if mem.IndexByte(text, '\\') < 0 {
		return text.EqualString(key)
	}
	dec, err := jtok.Unquote(data, t)
	return err == nil && string(dec) == key
}

// Members returns a sequence of the token indices of the keys and values of
// the members of the object at toks[i]. If toks[i] is not an object, the
// sequence is empty. A trailing key with no value is not reported.
func Members(toks []jtok.Token, i int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if toks[i].Type != jtok.Object {
			return
		}
		end := jtok.Skip(toks, i)
		for k := i + 1; k+1 < end; {
			v := k + 1
			next := jtok.Skip(toks, v)
			if !yield(k, v) {
				return
			}
			k = next
		}
	}
}

// Elements returns a sequence of the token indices of the elements of the
// array at toks[i]. If toks[i] is not an array, the sequence is empty.
func Elements(toks []jtok.Token, i int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if toks[i].Type != jtok.Array {
			return
		}
		end := jtok.Skip(toks, i)
		for j := i + 1; j < end; j = jtok.Skip(toks, j) {
			if !yield(j) {
				return
			}
		}
	}
}
