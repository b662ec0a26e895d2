// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package jtok_test

import (
	"errors"
	"testing"

	"github.com/creachadair/jtok"
	"github.com/google/go-cmp/cmp"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  jtok.Type
		want string
	}{
		{jtok.Undefined, "undefined"},
		{jtok.Object, "object"},
		{jtok.Array, "array"},
		{jtok.String, "string"},
		{jtok.Primitive, "primitive"},
		{jtok.Type(99), "Type(99)"},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("String(%d): got %q, want %q", test.typ, got, test.want)
		}
	}
}

func TestTokenText(t *testing.T) {
	data := []byte(`{"k": "v\n", "n": -2}`)
	toks, err := jtok.Tokenize(data)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var text, raw []string
	for _, tok := range toks {
		text = append(text, string(tok.Text(data)))
		raw = append(raw, string(tok.Raw(data)))
	}
	if diff := cmp.Diff([]string{string(data), `k`, `v\n`, `n`, `-2`}, text); diff != "" {
		t.Errorf("Text (-want, +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{string(data), `"k"`, `"v\n"`, `"n"`, `-2`}, raw); diff != "" {
		t.Errorf("Raw (-want, +got):\n%s", diff)
	}

	open := jtok.Token{Type: jtok.String, Start: 2, End: -1}
	if got := open.Text(data); got != nil {
		t.Errorf("Text of open token: got %q, want nil", got)
	}
	if got := open.Raw(data); got != nil {
		t.Errorf("Raw of open token: got %q, want nil", got)
	}
	if got, want := toks[0].String(), "object[0:21]#2"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
}

func TestLocation(t *testing.T) {
	data := []byte("{\n \"a\": [1,\n 2]\n}")
	toks, err := jtok.Tokenize(data)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	var got []string
	for _, tok := range toks {
		got = append(got, tok.Location(data).String())
	}
	want := []string{"1:0-4:1", "2:2-3", "2:6-3:3", "2:7-8", "3:1-2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Locations (-want, +got):\n%s", diff)
	}

	if lc := jtok.Locate(data, 1000); lc != (jtok.LineCol{Line: 4, Column: 1}) {
		t.Errorf("Locate past end: got %v, want 4:1", lc)
	}
	if lc := jtok.Locate(data, -3); lc != (jtok.LineCol{Line: 1, Column: 0}) {
		t.Errorf("Locate before start: got %v, want 1:0", lc)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		ntok  int
		want  error
		estr  string
	}{
		{`[1, 2, 3]`, 4, nil, ""},
		{`[1, 2`, 3, jtok.ErrIncomplete, "incomplete JSON input (offset 5)"},
		{`[1]]`, 2, jtok.ErrInvalid, "invalid JSON input (offset 3)"},
		{`"abc`, 0, jtok.ErrIncomplete, "incomplete JSON input (offset 0)"},
	}
	for _, test := range tests {
		toks, err := jtok.Tokenize([]byte(test.input))
		if !errors.Is(err, test.want) {
			t.Errorf("Tokenize %#q: got error %v, want %v", test.input, err, test.want)
		} else if err != nil && err.Error() != test.estr {
			t.Errorf("Tokenize %#q: got error %q, want %q", test.input, err, test.estr)
		}
		if len(toks) != test.ntok {
			t.Errorf("Tokenize %#q: got %d tokens, want %d", test.input, len(toks), test.ntok)
		}
	}
}

func TestTokenizeLarge(t *testing.T) {
	var buf []byte
	buf = append(buf, '[')
	for i := range 1000 {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, `{"id":1,"tags":["a","b"]}`...)
	}
	buf = append(buf, ']')

	toks, err := jtok.Tokenize(buf)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if got, want := len(toks), 1+1000*7; got != want {
		t.Errorf("Tokenize: got %d tokens, want %d", got, want)
	}
	if toks[0].Size != 1000 {
		t.Errorf("Root size: got %d, want 1000", toks[0].Size)
	}
}

func TestSkip(t *testing.T) {
	data := []byte(`[{"a": [1, 2]}, "x", [], 3]`)
	toks, err := jtok.Tokenize(data)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	// 0:[ 1:{ 2:"a" 3:[ 4:1 5:2 6:"x" 7:[] 8:3
	tests := []struct{ i, want int }{
		{0, 9}, {1, 6}, {2, 3}, {3, 6}, {4, 5}, {6, 7}, {7, 8}, {8, 9},
	}
	for _, test := range tests {
		if got := jtok.Skip(toks, test.i); got != test.want {
			t.Errorf("Skip(%d): got %d, want %d", test.i, got, test.want)
		}
	}

	// An open container owns everything after it.
	var p jtok.Parser
	part := make([]jtok.Token, 8)
	n, _ := p.ParseString(`[1, [2, 3`, part)
	if got := jtok.Skip(part[:n], 2); got != n {
		t.Errorf("Skip(open): got %d, want %d", got, n)
	}
}

func TestUnquote(t *testing.T) {
	data := []byte(`{"k": "a\tb!", "n": 1, "open": "abc`)
	var p jtok.Parser
	toks := make([]jtok.Token, 8)
	n, err := p.Parse(data, toks)
	if !errors.Is(err, jtok.ErrIncomplete) {
		t.Fatalf("Parse: got %v, want %v", err, jtok.ErrIncomplete)
	}

	if got, err := jtok.Unquote(data, toks[2]); err != nil {
		t.Errorf("Unquote: unexpected error: %v", err)
	} else if string(got) != "a\tb!" {
		t.Errorf("Unquote: got %q, want %q", got, "a\tb!")
	}
	if got, err := jtok.Unquote(data, toks[4]); err == nil {
		t.Errorf("Unquote(primitive): got %q, want error", got)
	}
	if got, err := jtok.Unquote(data, toks[n]); !errors.Is(err, jtok.ErrIncomplete) {
		t.Errorf("Unquote(open): got (%q, %v), want %v", got, err, jtok.ErrIncomplete)
	}
}
