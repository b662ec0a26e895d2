// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jtok

import "go4.org/mem"

// A Parser holds the state of a resumable scan. The zero value is ready for
// use and is equivalent to having scanned no input.
//
// A Parser is plain data: copying it checkpoints the scan, and the copy can be
// resumed later with the same token buffer contents. A Parser must not be used
// by multiple goroutines concurrently.
//
// The open containers are not stored in the Parser. They are the Object and
// Array tokens in the committed prefix of the token buffer whose End is -1;
// Super identifies the innermost one.
type Parser struct {
	Pos   int  // offset of the next byte to scan
	Next  int  // number of tokens committed to the buffer
	Super int  // 1 + index of the innermost open container; 0 if none
	Colon bool // a colon was scanned and the member value is pending
}

// NewParser returns a Parser in its initial state. It is equivalent to the
// zero Parser.
func NewParser() Parser { return Parser{} }

// Init resets p to its initial state.
func (p *Parser) Init() { *p = Parser{} }

// Parse scans data starting from p.Pos, writing tokens into toks, and returns
// the number of tokens committed so far. The capacity of the scan is len(toks).
//
// Parse reports ErrIncomplete if data ends before the current value is
// complete, including when a top-level primitive runs to the end of data.
// Scanning may be resumed by calling Parse again with the same p and toks, and
// a longer data sharing the prefix already scanned.
//
// Parse reports ErrNoMemory if toks has no room for another token. The scan
// may be resumed with a larger toks whose prefix holds the tokens already
// committed.
//
// Parse reports ErrInvalid if brackets are mismatched. In that case the scan
// cannot be resumed.
//
// Parse does not allocate.
func (p *Parser) Parse(data []byte, toks []Token) (int, error) {
	return p.parse(mem.B(data), toks, false)
}

// ParseString behaves as Parse, but reads its input from a string.
func (p *Parser) ParseString(s string, toks []Token) (int, error) {
	return p.parse(mem.S(s), toks, false)
}

// ParseEOF behaves as Parse, but treats the end of data as the end of the
// input, so that a primitive running to the end of data is complete.
func (p *Parser) ParseEOF(data []byte, toks []Token) (int, error) {
	return p.parse(mem.B(data), toks, true)
}

// ParseStringEOF behaves as ParseEOF, but reads its input from a string.
func (p *Parser) ParseStringEOF(s string, toks []Token) (int, error) {
	return p.parse(mem.S(s), toks, true)
}

func (p *Parser) parse(js mem.RO, toks []Token, eof bool) (int, error) {
	if p.Pos > js.Len() {
		return p.Next, ErrInvalid // input is shorter than what was scanned
	} else if p.Next > len(toks) {
		return p.Next, ErrNoMemory
	}

	for p.Pos < js.Len() {
		switch c := js.At(p.Pos); c {
		case '{', '[':
			if p.Next >= len(toks) {
				return p.Next, ErrNoMemory
			}
			typ := Object
			if c == '[' {
				typ = Array
			}
			p.commit(toks, Token{Type: typ, Start: p.Pos, End: -1})
			p.Super = p.Next
			p.Pos++

		case '}', ']':
			if p.Super == 0 {
				return p.Next, ErrInvalid
			}
			want := Object
			if c == ']' {
				want = Array
			}
			t := &toks[p.Super-1]
			if t.Type != want || !t.IsOpen() {
				return p.Next, ErrInvalid
			}
			t.End = p.Pos + 1
			p.Super = enclosing(toks, p.Super-1)
			p.Colon = false
			p.Pos++

		case '"':
			if err := p.parseString(js, toks); err != nil {
				return p.Next, err
			}

		case ' ', '\t', '\r', '\n':
			p.Pos++

		case ':':
			if p.Super > 0 && toks[p.Super-1].Type == Object {
				p.Colon = true
			}
			p.Pos++

		case ',':
			p.Colon = false
			p.Pos++

		default:
			if err := p.parsePrimitive(js, toks, eof); err != nil {
				return p.Next, err
			}
		}
	}
	if p.Super != 0 {
		return p.Next, ErrIncomplete
	}
	return p.Next, nil
}

// parseString scans a quoted string beginning at p.Pos.
func (p *Parser) parseString(js mem.RO, toks []Token) error {
	start := p.Pos + 1
	for i := start; i < js.Len(); i++ {
		switch js.At(i) {
		case '\\':
			i++ // the escaped byte cannot end the string
		case '"':
			if p.Next >= len(toks) {
				return ErrNoMemory
			}
			p.commit(toks, Token{Type: String, Start: start, End: i})
			p.Pos = i + 1
			return nil
		}
	}
	p.pending(toks, String, start)
	return ErrIncomplete
}

// parsePrimitive scans an unquoted value beginning at p.Pos.
func (p *Parser) parsePrimitive(js mem.RO, toks []Token, eof bool) error {
	end := p.Pos
	for end < js.Len() && !isDelim(js.At(end)) {
		end++
	}
	if end == js.Len() && !eof {
		p.pending(toks, Primitive, p.Pos)
		return ErrIncomplete
	} else if p.Next >= len(toks) {
		return ErrNoMemory
	}
	p.commit(toks, Token{Type: Primitive, Start: p.Pos, End: end})
	p.Pos = end
	return nil
}

// commit records t in the next free slot of toks and counts it as a child of
// the innermost open container. The caller must ensure a slot is free.
func (p *Parser) commit(toks []Token, t Token) {
	if p.Super > 0 {
		if up := &toks[p.Super-1]; up.Type == Array || !p.Colon {
			up.Size++
		}
	}
	p.Colon = false
	toks[p.Next] = t
	p.Next++
}

// pending records an open token for a value cut off by the end of the input,
// if there is room for it. The token is not committed: p.Pos remains at the
// start of the value, and a resumed scan rewrites the same slot.
func (p *Parser) pending(toks []Token, typ Type, start int) {
	if p.Next < len(toks) {
		toks[p.Next] = Token{Type: typ, Start: start, End: -1}
	}
}

// Depth reports the number of containers that are currently open.
func (p *Parser) Depth(toks []Token) int {
	var n int
	for i := p.Super; i > 0; i = enclosing(toks, i-1) {
		n++
	}
	return n
}

// Open appends to dst the indices of the currently open containers in toks,
// outermost first, and returns the updated slice.
func (p *Parser) Open(toks []Token, dst []int) []int {
	for i := 0; i < p.Super; i++ {
		if toks[i].Type.IsContainer() && toks[i].IsOpen() {
			dst = append(dst, i)
		}
	}
	return dst
}

// Drop discards the first n committed tokens and the first off bytes of the
// input, renumbering the remaining tokens and the state of p so the scan can
// continue over the input with its first off bytes removed. The dropped
// tokens must be complete, and every remaining token must begin at or after
// off.
func (p *Parser) Drop(toks []Token, n, off int) {
	rest := toks[:copy(toks, toks[n:p.Next])]
	for i := range rest {
		rest[i].Start -= off
		if !rest[i].IsOpen() {
			rest[i].End -= off
		}
	}
	p.Pos -= off
	p.Next -= n
	if p.Super > 0 {
		p.Super -= n
	}
}

// enclosing returns 1 + the index of the innermost open container before
// toks[i], or 0 if there is none.
func enclosing(toks []Token, i int) int {
	for i--; i >= 0; i-- {
		if toks[i].Type.IsContainer() && toks[i].IsOpen() {
			return i + 1
		}
	}
	return 0
}

func isDelim(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ',', ']', '}':
		return true
	}
	return false
}
