// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/creachadair/jtok"
	"github.com/creachadair/jtok/cursor"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

const testJSON = `{
  "list": [
    {
      "x": 1
    },
    {
      "x": 2
    }
  ],
  "y": {
    "hello": "there"
  },
  "o": [
    "hi",
    "yourself"
  ],
  "xyz": {
    "p": true,
    "d": true,
    "q": false
  }
}`

// Token indices of testJSON:
//
//	 0 {           9 "y"        17 "xyz"
//	 1 "list"     10 {          18 {
//	 2 [          11 "hello"    19 "p"  20 true
//	 3 { 4 "x" 5  12 "there"    21 "d"  22 true
//	 6 { 7 "x" 8  13 "o"        23 "q"  24 false
//	              14 [ 15 "hi" 16 "yourself"

func mustTokenize(t *testing.T, s string) ([]byte, []jtok.Token) {
	t.Helper()
	data := []byte(s)
	toks, err := jtok.Tokenize(data)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	return data, toks
}

func TestCursor(t *testing.T) {
	data, toks := mustTokenize(t, testJSON)
	if len(toks) != 25 {
		t.Fatalf("Tokenize: got %d tokens, want 25", len(toks))
	}

	tests := []struct {
		name string
		path []any
		want int
		fail bool
	}{
		{"NilInput", nil, 0, false},
		{"NilElement", []any{nil, "y", nil}, 10, false},
		{"NoMatch", []any{"nonesuch"}, 0, true},
		{"Range", []any{11}, 0, true},
		{"BadElement", []any{3.5}, 0, true},

		{"ArrayPos", []any{"list", 1}, 6, false},
		{"ArrayNeg", []any{"list", -1}, 6, false},
		{"ArrayRange", []any{"o", 25}, 14, true},
		{"ArrayKey", []any{"o", "hi"}, 14, true},
		{"ObjPath", []any{"xyz", "d"}, 22, false},
		{"ObjIndex", []any{"xyz", 1}, 22, false},
		{"ObjNeg", []any{"xyz", -3}, 20, false},
		{"Nested", []any{"list", 0, "x"}, 5, false},
		{"ScalarKey", []any{"y", "hello", "x"}, 12, true},

		{"FuncArray", []any{"o", testPathFunc}, 16, false},
		{"FuncObj", []any{"xyz", testPathFunc}, 24, false},
		{"FuncWrong", []any{"xyz", "d", testPathFunc}, 22, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cursor.New(data, toks).Down(tc.path...)
			if err := c.Err(); err != nil {
				if tc.fail {
					t.Logf("Got expected error: %v", err)
				} else {
					t.Fatalf("Unexpected error: %v", err)
				}
			} else if tc.fail {
				t.Fatal("Down should have failed, but did not")
			}
			if got := c.Index(); got != tc.want {
				t.Errorf("Index: got %d, want %d", got, tc.want)
			}
		})
	}
}

var errNotContainer = errors.New("not a container")

// testPathFunc selects the last child value of an array or object.
func testPathFunc(data []byte, toks []jtok.Token, i int) (int, error) {
	last := -1
	switch toks[i].Type {
	case jtok.Array:
		for v := range cursor.Elements(toks, i) {
			last = v
		}
	case jtok.Object:
		for _, v := range cursor.Members(toks, i) {
			last = v
		}
	default:
		return 0, errNotContainer
	}
	return last, nil
}

func TestFuncError(t *testing.T) {
	data, toks := mustTokenize(t, testJSON)
	c := cursor.New(data, toks).Down("xyz", "d", testPathFunc)
	if !errors.Is(c.Err(), errNotContainer) {
		t.Errorf("Down: got error %v, want %v", c.Err(), errNotContainer)
	}
}

func TestNavigation(t *testing.T) {
	data, toks := mustTokenize(t, testJSON)
	c := cursor.New(data, toks)
	if !c.AtOrigin() {
		t.Error("New cursor is not at its origin")
	}

	c.Down("list", 0, "x")
	if diff := cmp.Diff([]int{0, 2, 3, 5}, c.Path()); diff != "" {
		t.Errorf("Path (-want, +got):\n%s", diff)
	}
	if got := string(c.Text()); got != "1" {
		t.Errorf("Text: got %q, want 1", got)
	}

	c.Up().Up()
	if got := c.Value().Type; got != jtok.Array {
		t.Errorf("After Up: got %v, want array", got)
	}
	c.Down(1, "x")
	if got := string(c.Text()); got != "2" {
		t.Errorf("Text: got %q, want 2", got)
	}

	c.Down("bogus")
	if c.Err() == nil {
		t.Error("Down(bogus): got nil error, want error")
	}
	c.Reset()
	if !c.AtOrigin() || c.Err() != nil {
		t.Errorf("Reset: at origin %v, err %v", c.AtOrigin(), c.Err())
	}
	c.Up() // no effect at the origin
	if got := c.Index(); got != 0 {
		t.Errorf("Up at origin: got index %d, want 0", got)
	}
}

func TestNewAt(t *testing.T) {
	data, toks := mustTokenize(t, testJSON)
	c := cursor.NewAt(data, toks, 18)
	if got := string(c.Down("q").Text()); got != "false" {
		t.Errorf(`Down("q"): got %q, want false`, got)
	}
	if got := c.Origin(); got != 18 {
		t.Errorf("Origin: got %d, want 18", got)
	}

	mtest.MustPanic(t, func() { cursor.New(nil, nil) })
	mtest.MustPanic(t, func() { cursor.NewAt(data, toks, len(toks)) })
}

func TestPath(t *testing.T) {
	data, toks := mustTokenize(t, testJSON)
	tok, err := cursor.Path(data, toks, "y", "hello")
	if err != nil {
		t.Fatalf("Path: unexpected error: %v", err)
	}
	if got := string(tok.Text(data)); got != "there" {
		t.Errorf("Path: got %q, want there", got)
	}
	if _, err := cursor.Path(data, toks, "y", "goodbye"); err == nil {
		t.Error("Path: got nil error, want error")
	}
}

func TestEscapedKey(t *testing.T) {
	data, toks := mustTokenize(t, `{"a\u0062": 1, "ab": 2, "c\"": 3}`)
	if got := string(cursor.New(data, toks).Down("ab").Text()); got != "1" {
		t.Errorf(`Down("ab"): got %q, want 1`, got)
	}
	if got := string(cursor.New(data, toks).Down(`c"`).Text()); got != "3" {
		t.Errorf(`Down("c\""): got %q, want 3`, got)
	}
}

func TestMembers(t *testing.T) {
	data, toks := mustTokenize(t, testJSON)

	var keys []string
	for k, v := range cursor.Members(toks, 18) {
		keys = append(keys, string(toks[k].Text(data))+"="+string(toks[v].Text(data)))
	}
	if diff := cmp.Diff([]string{"p=true", "d=true", "q=false"}, keys); diff != "" {
		t.Errorf("Members (-want, +got):\n%s", diff)
	}

	var top []int
	for k := range cursor.Members(toks, 0) {
		top = append(top, k)
	}
	if diff := cmp.Diff([]int{1, 9, 13, 17}, top); diff != "" {
		t.Errorf("Top-level keys (-want, +got):\n%s", diff)
	}

	if got := slices.Collect(cursor.Elements(toks, 2)); !slices.Equal(got, []int{3, 6}) {
		t.Errorf("Elements: got %v, want [3 6]", got)
	}
	if got := slices.Collect(cursor.Elements(toks, 0)); len(got) != 0 {
		t.Errorf("Elements(object): got %v, want empty", got)
	}
}
