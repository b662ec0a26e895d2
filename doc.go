// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jtok implements a resumable, allocation-free JSON tokenizer.
//
// # Scanning
//
// The Parser type scans JSON text held in memory and records a flat sequence
// of tokens into a buffer supplied by the caller. Each Token records the byte
// span of one value, its type, and for objects and arrays the number of
// immediate children. No tree is built, and the parser does not allocate:
//
//	var p jtok.Parser
//	toks := make([]jtok.Token, 64)
//	n, err := p.Parse(input, toks)
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	for _, t := range toks[:n] {
//	   log.Printf("%v %q", t.Type, t.Text(input))
//	}
//
// Containers own the tokens that follow them in the buffer up to the end of
// their span. Use Skip to step over a value and its descendants.
//
// # Resumption
//
// The state of a scan lives entirely in the Parser and the token buffer, so a
// scan that stops early can be continued. Parse reports one of three errors:
//
//	Error         | Meaning                          | To continue
//	------------- | -------------------------------- | ------------------------------------
//	ErrIncomplete | the input ended inside a value   | call again with a longer input
//	ErrNoMemory   | the token buffer is full         | call again with a larger buffer
//	ErrInvalid    | mismatched or unexpected bracket | not resumable; call Init and restart
//
// When resuming after ErrIncomplete, the new input must begin with the bytes
// already scanned. When resuming after ErrNoMemory, the new buffer must begin
// with the tokens already committed; extending the old buffer with append is
// the usual way to do this:
//
//	for {
//	   n, err := p.Parse(input, toks)
//	   if errors.Is(err, jtok.ErrNoMemory) {
//	      toks = append(toks, make([]jtok.Token, len(toks))...)
//	      continue
//	   }
//	   ...
//	}
//
// The Tokenize function does exactly this for a complete input.
//
// # Validation
//
// The parser checks that brackets are balanced and correctly paired, but it is
// not a validator: separators are not checked, and primitives are not decoded.
// Use Unquote to decode the contents of a string token.
package jtok
