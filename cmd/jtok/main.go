// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

// Program jtok prints the tokens of JSON input.
//
// Usage:
//
//	jtok [flags] [file ...]
//
// With no files, jtok reads standard input. Each token is printed on one line
// with its index, type, location, size, and source text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/creachadair/jtok"
	"github.com/creachadair/jtok/cursor"
	"github.com/creachadair/jtok/jpath"
	"github.com/creachadair/jtok/stream"
	"github.com/creachadair/mds/mstr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tailscale/hujson"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "jtok: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	eof     bool
	jwcc    bool
	stream  bool
	path    []any      // cursor path, if set
	query   jpath.Path // JSONPath query, if set
	maxText int
	log     zerolog.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("jtok", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Scanning options
	eof := fs.Bool("eof", true, "Treat the end of each file as the end of the final value")
	jwcc := fs.Bool("jwcc", false, "Accept JSON with commas and comments")
	useStream := fs.Bool("stream", false, "Read the input as a sequence of values")

	// Output options
	path := fs.String("path", "", "Print only the value at this slash-separated path of keys and indices,\n"+
		"or the values selected by this JSONPath expression if it begins with $")
	maxText := fs.Int("max-text", 40, "Truncate token text to this many bytes (0 means no limit)")

	// Performance options
	bufferSize := fs.Int("buffer", 16384, "Buffer size for the stream reader")
	maxRead := fs.Int("max-read", 4096, "Maximum read size per operation")

	// Logging options
	logLevel := fs.String("log-level", "warn", "Log level (trace, debug, info, warn, error, fatal)")
	prettyLogs := fs.Bool("pretty", false, "Enable pretty logging output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *jwcc && *useStream {
		return errors.New("-jwcc cannot be combined with -stream")
	}

	cfg := config{
		eof:     *eof,
		jwcc:    *jwcc,
		stream:  *useStream,
		maxText: *maxText,
		log:     setupLogging(stderr, *logLevel, *prettyLogs),
	}
	if strings.HasPrefix(*path, "$") {
		q, err := jpath.Parse(*path)
		if err != nil {
			return fmt.Errorf("invalid -path: %w", err)
		}
		cfg.query = q
	} else {
		cfg.path = parsePath(*path)
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	opts := []stream.Option{stream.BufferSize(*bufferSize), stream.MaxRead(*maxRead)}
	for _, name := range inputs {
		if err := cfg.printInput(ctx, name, stdin, stdout, opts); err != nil {
			return err
		}
	}
	return nil
}

// printInput prints the tokens of the named input, where "-" is stdin.
func (c config) printInput(ctx context.Context, name string, stdin io.Reader, w io.Writer, opts []stream.Option) error {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if c.stream {
		return c.printStream(ctx, name, r, w, opts...)
	}
	return c.printFile(name, r, w)
}

// printFile tokenizes the complete contents of r and prints the tokens.
func (c config) printFile(name string, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if c.jwcc {
		// Comments and trailing commas become spaces, so offsets are kept.
		data, err = hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	toks, err := c.tokenize(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	c.log.Debug().Str("input", name).Int("bytes", len(data)).Int("tokens", len(toks)).Msg("tokenized")
	if len(toks) == 0 {
		return nil
	}
	if err := c.printTokens(w, data, toks); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// printStream prints the tokens of each value read from r.
func (c config) printStream(ctx context.Context, name string, r io.Reader, w io.Writer, opts ...stream.Option) error {
	lex := stream.New(ctx, r, append(opts, stream.Logger(c.log))...)
	for {
		v, err := lex.Next()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(w, "# offset %d\n", v.Offset)
		if err := c.printTokens(w, v.Data, v.Tokens); err != nil {
			return fmt.Errorf("%s: offset %d: %w", name, v.Offset, err)
		}
	}
}

// tokenize scans data, growing the token buffer as needed.
func (c config) tokenize(data []byte) ([]jtok.Token, error) {
	p := jtok.NewParser()
	toks := make([]jtok.Token, 64)
	for {
		var n int
		var err error
		if c.eof {
			n, err = p.ParseEOF(data, toks)
		} else {
			n, err = p.Parse(data, toks)
		}
		if errors.Is(err, jtok.ErrNoMemory) {
			c.log.Trace().Int("tokens", len(toks)).Int("pos", p.Pos).Msg("grow token buffer")
			toks = append(toks, make([]jtok.Token, len(toks))...)
			continue
		} else if err != nil {
			return toks[:n], fmt.Errorf("at %v: %w", jtok.Locate(data, p.Pos), err)
		}
		return toks[:n], nil
	}
}

// printTokens prints the tokens of the values selected by the path, or all
// the tokens if there is no path.
func (c config) printTokens(w io.Writer, data []byte, toks []jtok.Token) error {
	if c.query == nil && c.path == nil {
		c.printRange(w, data, toks, 0, len(toks))
		return nil
	}
	roots, err := c.selectValues(data, toks)
	if err != nil {
		return err
	}
	for _, i := range roots {
		c.printRange(w, data, toks, i, jtok.Skip(toks, i))
	}
	return nil
}

// selectValues returns the token indices of the values selected by the path.
func (c config) selectValues(data []byte, toks []jtok.Token) ([]int, error) {
	if c.query != nil {
		return c.query.Select(data, toks), nil
	}
	cur := cursor.New(data, toks).Down(c.path...)
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return []int{cur.Index()}, nil
}

func (c config) printRange(w io.Writer, data []byte, toks []jtok.Token, lo, hi int) {
	for i, tok := range toks[lo:hi] {
		text := string(tok.Raw(data))
		if c.maxText > 0 {
			text = mstr.Trunc(text, c.maxText)
		}
		fmt.Fprintf(w, "%d\t%v\t%v\t%d\t%q\n", lo+i, tok.Type, tok.Location(data), tok.Size, text)
	}
}

// parsePath parses a slash-separated path of object keys and array indices.
// An element that parses as an integer is an index.
func parsePath(s string) []any {
	if s == "" {
		return nil
	}
	var path []any
	for _, elt := range strings.Split(s, "/") {
		if n, err := strconv.Atoi(elt); err == nil {
			path = append(path, n)
		} else {
			path = append(path, elt)
		}
	}
	return path
}

func setupLogging(w io.Writer, level string, pretty bool) zerolog.Logger {
	// Set log level
	var logLevel zerolog.Level
	switch level {
	case "trace":
		logLevel = zerolog.TraceLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	default:
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Configure output format
	if pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	}
	return log.Logger.With().Str("component", "jtok").Logger()
}
