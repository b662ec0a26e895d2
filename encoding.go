// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jtok

import (
	"fmt"

	"github.com/creachadair/jtok/internal/escape"
	"go4.org/mem"
)

// Unquote decodes the contents of the String token t in data. Escape
// sequences are replaced with their unescaped equivalents.
//
// Invalid escapes are replaced by the Unicode replacement rune. Unquote
// reports an error if t is not a complete string, or for an incomplete escape
// sequence.
func Unquote(data []byte, t Token) ([]byte, error) {
	if t.Type != String {
		return nil, fmt.Errorf("token is %v, not string", t.Type)
	} else if t.IsOpen() {
		return nil, posError{t.Start, ErrIncomplete}
	}
	dec, err := escape.Unquote(make([]byte, 0, t.End-t.Start), mem.B(t.Text(data)))
	if err != nil {
		return nil, posError{t.Start, err}
	}
	return dec, nil
}

type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }
