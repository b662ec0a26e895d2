// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Package stream implements a reader for a sequence of JSON values.
//
// A Lexer reads from an io.Reader into a buffer and runs a jtok.Parser over
// it, resuming the same scan each time more input arrives, so no byte of the
// input is scanned twice. Each complete top-level value is delivered with its
// tokens, after which its text and tokens are discarded from the buffers.
//
// The values may be separated by whitespace or commas, as in a JSON Lines
// file or a stream of JSON-RPC messages.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/creachadair/jtok"
	"github.com/rs/zerolog"
)

const (
	defaultBufferSize = 16384
	defaultMaxRead    = 4096
	defaultTokens     = 64
)

// A Value is a complete top-level value read from a stream.
type Value struct {
	Offset int64        // offset of the value in the stream
	Data   []byte       // the source text of the value
	Tokens []jtok.Token // the tokens of the value, relative to Data
}

// Token returns the token of the value itself.
func (v Value) Token() jtok.Token { return v.Tokens[0] }

// Text returns the source text of the value, including quotation marks if it
// is a string.
func (v Value) Text() []byte { return v.Tokens[0].Raw(v.Data) }

// An Option configures a Lexer.
type Option func(*Lexer)

// BufferSize sets the initial size in bytes of the input buffer.
func BufferSize(n int) Option { return func(l *Lexer) { l.bufSize = n } }

// MaxRead sets the maximum number of bytes requested from the reader by a
// single read.
func MaxRead(n int) Option { return func(l *Lexer) { l.maxRead = n } }

// Tokens sets the initial capacity of the token buffer.
func Tokens(n int) Option { return func(l *Lexer) { l.ntoks = n } }

// MaxTokens limits the capacity of the token buffer, and thus the number of
// tokens a single value may have. If n <= 0, the capacity is not limited.
func MaxTokens(n int) Option { return func(l *Lexer) { l.maxTokens = n } }

// Logger sets the logger used to report buffer activity. By default the Lexer
// does not log.
func Logger(log zerolog.Logger) Option { return func(l *Lexer) { l.log = log } }

// A Lexer reads a sequence of JSON values from an io.Reader.
type Lexer struct {
	ctx context.Context
	r   io.Reader
	log zerolog.Logger

	bufSize   int
	maxRead   int
	ntoks     int
	maxTokens int

	p    jtok.Parser
	buf  []byte       // unconsumed input
	toks []jtok.Token // token buffer for p
	base int64        // stream offset of buf[0]
	eof  bool         // the reader is exhausted

	// The value most recently delivered, released by the next call.
	usedToks  int
	usedBytes int

	err error // sticky error, reported once buf is drained
}

// New constructs a Lexer that reads from r. The context governs the reads: a
// Lexer whose context ends reports the context's error.
func New(ctx context.Context, r io.Reader, opts ...Option) *Lexer {
	l := &Lexer{
		ctx:     ctx,
		r:       r,
		log:     zerolog.Nop(),
		bufSize: defaultBufferSize,
		maxRead: defaultMaxRead,
		ntoks:   defaultTokens,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.bufSize = max(l.bufSize, 1)
	l.maxRead = max(l.maxRead, 1)
	l.ntoks = max(l.ntoks, 1)
	l.buf = make([]byte, 0, l.bufSize)
	l.toks = make([]jtok.Token, l.ntoks)
	return l
}

// Next returns the next complete value from the stream. It returns io.EOF when
// the stream ends cleanly after a value. If the stream ends inside a value,
// the error wraps both jtok.ErrIncomplete and io.ErrUnexpectedEOF. Errors
// from the scan wrap jtok.ErrInvalid or jtok.ErrNoMemory.
//
// The contents of the Value are valid only until the next call to Next.
func (l *Lexer) Next() (Value, error) {
	l.release()
	for {
		if l.err == nil {
			if err := l.ctx.Err(); err != nil {
				l.err = err
			}
		}
		if l.err != nil {
			// Values committed before a scan error are still good.
			if errors.Is(l.err, jtok.ErrInvalid) && l.p.Next > 0 && !l.toks[0].IsOpen() {
				return l.deliver(l.p.Next), nil
			}
			return Value{}, l.err
		}

		var n int
		var err error
		if l.eof {
			n, err = l.p.ParseEOF(l.buf, l.toks)
		} else {
			n, err = l.p.Parse(l.buf, l.toks)
		}
		if errors.Is(err, jtok.ErrInvalid) {
			l.err = l.errorf(err)
			continue
		}
		if n > 0 && !l.toks[0].IsOpen() {
			return l.deliver(n), nil
		}

		if errors.Is(err, jtok.ErrNoMemory) {
			if !l.growTokens() {
				l.err = l.errorf(err)
			}
			continue
		}

		// The scan needs more input.
		if l.eof {
			if n == 0 && err == nil {
				l.err = io.EOF
			} else {
				l.err = fmt.Errorf("stream: offset %d: %w: %w",
					l.base+int64(l.p.Pos), jtok.ErrIncomplete, io.ErrUnexpectedEOF)
			}
			continue
		}
		if l.p.Next == 0 && l.p.Pos > 0 {
			// Only separators have been scanned; a pending token resumes at Pos.
			l.discard(0, l.p.Pos)
		}
		if err := l.read(); err != nil {
			l.err = fmt.Errorf("stream: read: %w", err)
		}
	}
}

// DecodeAll calls cb with each value read from the stream until the stream is
// exhausted. If reading fails, DecodeAll calls errCb with the error and
// returns. The end of the stream is not reported as an error.
func (l *Lexer) DecodeAll(cb func(Value), errCb func(error)) {
	for {
		v, err := l.Next()
		if err == io.EOF {
			return
		} else if err != nil {
			errCb(err)
			return
		}
		cb(v)
	}
}

// deliver discards any text before the first of the n committed tokens and
// returns the complete value it begins.
func (l *Lexer) deliver(n int) Value {
	if start := valueStart(l.toks[0]); start > 0 {
		l.discard(0, start)
	}
	first := l.toks[0]
	end := first.End
	if first.Type == jtok.String {
		end++ // closing quote
	}
	l.usedToks = jtok.Skip(l.toks[:n], 0)
	l.usedBytes = end
	l.log.Trace().Int64("offset", l.base).Int("bytes", end).
		Int("tokens", l.usedToks).Stringer("type", first.Type).Msg("value")
	return Value{
		Offset: l.base,
		Data:   l.buf[:end],
		Tokens: l.toks[:l.usedToks],
	}
}

// release discards the value most recently delivered.
func (l *Lexer) release() {
	if l.usedToks > 0 {
		l.discard(l.usedToks, l.usedBytes)
		l.usedToks, l.usedBytes = 0, 0
	}
}

// discard drops the first n tokens and the first off bytes of input.
func (l *Lexer) discard(n, off int) {
	l.p.Drop(l.toks, n, off)
	l.buf = l.buf[:copy(l.buf, l.buf[off:])]
	l.base += int64(off)
}

// read reads more input into the buffer, growing it if necessary.
func (l *Lexer) read() error {
	if cap(l.buf)-len(l.buf) < l.maxRead {
		nb := make([]byte, len(l.buf), max(2*cap(l.buf), len(l.buf)+l.maxRead))
		copy(nb, l.buf)
		l.log.Debug().Int("old", cap(l.buf)).Int("new", cap(nb)).Msg("grow input buffer")
		l.buf = nb
	}
	n, err := l.r.Read(l.buf[len(l.buf) : len(l.buf)+l.maxRead])
	l.buf = l.buf[:len(l.buf)+n]
	l.log.Trace().Int("bytes", n).Int("buffered", len(l.buf)).Int("pos", l.p.Pos).Msg("resume")
	if err == io.EOF {
		l.eof = true
		return nil
	}
	return err
}

// growTokens doubles the token buffer, up to the limit if one is set. It
// reports false if the buffer is already at the limit.
func (l *Lexer) growTokens() bool {
	n := 2 * len(l.toks)
	if l.maxTokens > 0 {
		if len(l.toks) >= l.maxTokens {
			return false
		}
		n = min(n, l.maxTokens)
	}
	l.log.Debug().Int("old", len(l.toks)).Int("new", n).Msg("grow token buffer")
	l.toks = append(l.toks, make([]jtok.Token, n-len(l.toks))...)
	return true
}

func (l *Lexer) errorf(err error) error {
	return fmt.Errorf("stream: offset %d: %w", l.base+int64(l.p.Pos), err)
}

// valueStart returns the offset of the first byte of the value of t.
func valueStart(t jtok.Token) int {
	if t.Type == jtok.String {
		return t.Start - 1
	}
	return t.Start
}
