// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtok

import "fmt"

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive); -1 if unknown
}

func (s Span) String() string { return fmt.Sprintf("%d-%d", s.Pos, s.End) }

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

func (loc Location) String() string {
	if loc.First.Line == loc.Last.Line {
		return fmt.Sprintf("%d:%d-%d", loc.First.Line, loc.First.Column, loc.Last.Column)
	}
	return fmt.Sprintf("%s-%s", loc.First, loc.Last)
}

// Locate returns the line and column of offset pos in data. Offsets past the
// end of data are clamped to the end.
func Locate(data []byte, pos int) LineCol {
	pos = min(max(pos, 0), len(data))
	lc := LineCol{Line: 1}
	for _, c := range data[:pos] {
		if c == '\n' {
			lc.Line++
			lc.Column = 0
		} else {
			lc.Column++
		}
	}
	return lc
}

// Location returns the complete location of t in data. If t is open, its
// location extends to the end of data.
func (t Token) Location(data []byte) Location {
	end := t.End
	if t.IsOpen() {
		end = len(data)
	}
	return Location{
		Span:  Span{Pos: t.Start, End: end},
		First: Locate(data, t.Start),
		Last:  Locate(data, end),
	}
}
