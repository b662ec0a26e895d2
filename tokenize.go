// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jtok

import "errors"

// minTokens is the initial token capacity used by Tokenize.
const minTokens = 16

// Tokenize scans the complete input data and returns its tokens. Unlike
// Parse, Tokenize allocates: it grows its token buffer as needed and retries
// whenever the buffer fills.
//
// In case of error, Tokenize returns the tokens committed before the error,
// and the error reports the offset where scanning stopped. The error wraps
// ErrInvalid or ErrIncomplete.
func Tokenize(data []byte) ([]Token, error) {
	var p Parser
	toks := make([]Token, minTokens)
	for {
		n, err := p.ParseEOF(data, toks)
		if errors.Is(err, ErrNoMemory) {
			toks = append(toks, make([]Token, len(toks))...)
			continue
		} else if err != nil {
			return toks[:n], posError{p.Pos, err}
		}
		return toks[:n], nil
	}
}

// Skip returns the index of the first token after the value whose token is at
// toks[i], that is, after the token and all its descendants. If toks[i] is an
// open container, everything after it belongs to it and Skip returns len(toks).
func Skip(toks []Token, i int) int {
	t := toks[i]
	if !t.Type.IsContainer() {
		return i + 1
	} else if t.IsOpen() {
		return len(toks)
	}
	j := i + 1
	for j < len(toks) && toks[j].Start < t.End {
		j++
	}
	return j
}
