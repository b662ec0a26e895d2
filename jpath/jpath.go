// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package jpath implements a subset of JSONPath for selecting values from the
// tokens of a JSON document.
//
// The supported steps are member names (.name and ['name']), wildcards (.*
// and [*]), recursive descent (..name and ..*), array indices ([1] and
// [0,-1]), and array slices ([1:3], [:2], [-1:]). Filter and script
// expressions are not supported.
package jpath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/jtok"
	"github.com/creachadair/jtok/cursor"
)

/*
Grammar:

  expr = root steps
  root = "$"
 steps = step [steps]
  step = "." name
  step = ".." name
  step = "[" value "]"
  name = WORD
  name = "'" QTEXT "'"
  name = "*"
 value = name
 value = INDEX {"," INDEX}
 value = [INDEX] ":" [INDEX]

  WORD = RE `\w+`
 QTEXT = RE `([^']|\\')*`
 INDEX = RE `-?\d+`
*/

// A Path is a parsed JSONPath expression.
type Path []Step

// An Op is a path operator.
type Op byte

const (
	Invalid  Op = iota // invalid operator
	Member             // member lookup (.name, ['name'])
	Wildcard           // all children (.*, [*])
	Recur              // recursive member lookup (..name)
	RecurAll           // all descendants (..*)
	Index              // array index lookup ([i,j,...])
	Slice              // array slice ([lo:hi])
)

var opText = [...]string{
	Invalid:  "invalid",
	Member:   "member",
	Wildcard: "wildcard",
	Recur:    "recur",
	RecurAll: "recur-all",
	Index:    "index",
	Slice:    "slice",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return opText[Invalid]
}

// A Step is a single step of a path.
type Step struct {
	Op    Op
	Name  string // for Member and Recur
	Index []int  // for Index

	// For Slice, the bounds of the slice. A nil bound is open.
	Lo, Hi *int
}

// Parse parses s as a path expression.
func Parse(s string) (Path, error) {
	t, ok := strings.CutPrefix(s, "$")
	if !ok {
		return nil, errors.New("missing root marker")
	}
	var path Path
	for t != "" {
		step, rest, err := parseStep(t)
		if err != nil {
			return nil, fmt.Errorf("at %q: %w", t, err)
		}
		path = append(path, step)
		t = rest
	}
	return path, nil
}

// MustParse parses s as a path expression, and panics if it is invalid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("jpath: %v", err))
	}
	return p
}

// String renders p in a canonical form that parses to the same path.
func (p Path) String() string {
	var buf strings.Builder
	buf.WriteString("$")
	for _, s := range p {
		switch s.Op {
		case Member:
			if nameRE.MatchString(s.Name) {
				buf.WriteString("." + s.Name)
			} else {
				fmt.Fprintf(&buf, "['%s']", quoteName(s.Name))
			}
		case Wildcard:
			buf.WriteString(".*")
		case Recur:
			if nameRE.MatchString(s.Name) {
				buf.WriteString(".." + s.Name)
			} else {
				fmt.Fprintf(&buf, "..'%s'", quoteName(s.Name))
			}
		case RecurAll:
			buf.WriteString("..*")
		case Index:
			buf.WriteString("[")
			for i, v := range s.Index {
				if i > 0 {
					buf.WriteString(",")
				}
				buf.WriteString(strconv.Itoa(v))
			}
			buf.WriteString("]")
		case Slice:
			buf.WriteString("[")
			if s.Lo != nil {
				buf.WriteString(strconv.Itoa(*s.Lo))
			}
			buf.WriteString(":")
			if s.Hi != nil {
				buf.WriteString(strconv.Itoa(*s.Hi))
			}
			buf.WriteString("]")
		}
	}
	return buf.String()
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, ".."); ok {
		name, star, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid ..name: %w", err)
		} else if star {
			return Step{Op: RecurAll}, u, nil
		}
		return Step{Op: Recur, Name: name}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "."); ok {
		name, star, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		} else if star {
			return Step{Op: Wildcard}, u, nil
		}
		return Step{Op: Member, Name: name}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		step, u, err := parseValue(t)
		if err != nil {
			return Step{}, t, err
		}
		u, ok := strings.CutPrefix(u, "]")
		if !ok {
			return Step{}, u, errors.New("missing close bracket")
		}
		return step, u, nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (name string, star bool, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "*"); ok {
		return "", true, t, nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return m[1], false, s[len(m[0]):], nil
	}
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		return unquoteName(m[1]), false, s[len(m[0]):], nil
	}
	return "", false, s, errors.New("invalid name")
}

func parseValue(s string) (_ Step, rest string, _ error) {
	if strings.HasPrefix(s, "?(") || strings.HasPrefix(s, "(") {
		return Step{}, s, errors.New("filter and script expressions are not supported")
	}
	if m := indexRE.FindStringSubmatch(s); m != nil {
		rest := s[len(m[0]):]
		if u, ok := strings.CutPrefix(rest, ":"); ok && !strings.Contains(m[1], ",") {
			return parseSlice(intp(m[1]), u)
		} else if ok {
			return Step{}, s, errors.New("invalid slice")
		}
		var idx []int
		for _, v := range strings.Split(m[1], ",") {
			idx = append(idx, atoi(v))
		}
		return Step{Op: Index, Index: idx}, rest, nil
	}
	if u, ok := strings.CutPrefix(s, ":"); ok {
		return parseSlice(nil, u)
	}
	if name, star, rest, err := parseName(s); err == nil {
		if star {
			return Step{Op: Wildcard}, rest, nil
		}
		return Step{Op: Member, Name: name}, rest, nil
	}
	return Step{}, s, fmt.Errorf("invalid value: %q", s)
}

func parseSlice(lo *int, s string) (Step, string, error) {
	out := Step{Op: Slice, Lo: lo}
	if m := boundRE.FindStringSubmatch(s); m != nil {
		out.Hi = intp(m[1])
		s = s[len(m[0]):]
	}
	return out, s, nil
}

var (
	nameQuoter   = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	nameUnquoter = strings.NewReplacer(`\\`, `\`, `\'`, `'`)
)

// quoteName escapes backslashes and single quotes in a quoted name.
func quoteName(s string) string { return nameQuoter.Replace(s) }

func unquoteName(s string) string { return nameUnquoter.Replace(s) }

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		panic(fmt.Sprintf("jpath: invalid index %q", s)) // matched by indexRE
	}
	return v
}

func intp(s string) *int { v := atoi(s); return &v }

var (
	wordRE  = regexp.MustCompile(`^(\w+)`)
	nameRE  = regexp.MustCompile(`^\w+$`)
	indexRE = regexp.MustCompile(`^(-?\d+(?:,-?\d+)*)`)
	boundRE = regexp.MustCompile(`^(-?\d+)`)
	quoteRE = regexp.MustCompile(`^'((?:[^'\\]|\\.)*)'`)
)

// Select evaluates p against the value whose token is toks[0], and returns
// the token indices of the selected values in the order they were found.
func (p Path) Select(data []byte, toks []jtok.Token) []int {
	if len(toks) == 0 {
		return nil
	}
	cur := []int{0}
	for _, step := range p {
		var next []int
		for _, i := range cur {
			next = step.apply(data, toks, i, next)
		}
		cur = next
	}
	return cur
}

// Select parses expr and evaluates it against the value whose token is
// toks[0]. It reports an error if expr is not a valid path.
func Select(data []byte, toks []jtok.Token, expr string) ([]int, error) {
	p, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return p.Select(data, toks), nil
}

func (s Step) apply(data []byte, toks []jtok.Token, i int, out []int) []int {
	switch s.Op {
	case Member:
		if v, ok := cursor.Find(data, toks, i, s.Name); ok {
			out = append(out, v)
		}

	case Wildcard:
		return appendChildren(toks, i, out)

	case Recur:
		if v, ok := cursor.Find(data, toks, i, s.Name); ok {
			out = append(out, v)
		}
		for _, c := range appendChildren(toks, i, nil) {
			out = s.apply(data, toks, c, out)
		}

	case RecurAll:
		for _, c := range appendChildren(toks, i, nil) {
			out = append(out, c)
			out = s.apply(data, toks, c, out)
		}

	case Index:
		if toks[i].Type != jtok.Array {
			break
		}
		elts := appendChildren(toks, i, nil)
		for _, k := range s.Index {
			if k < 0 {
				k += len(elts)
			}
			if k >= 0 && k < len(elts) {
				out = append(out, elts[k])
			}
		}

	case Slice:
		if toks[i].Type != jtok.Array {
			break
		}
		elts := appendChildren(toks, i, nil)
		lo, hi := sliceBound(s.Lo, 0, len(elts)), sliceBound(s.Hi, len(elts), len(elts))
		if lo < hi {
			out = append(out, elts[lo:hi]...)
		}
	}
	return out
}

// appendChildren appends to out the token indices of the elements of the
// array, or the member values of the object, at toks[i].
func appendChildren(toks []jtok.Token, i int, out []int) []int {
	switch toks[i].Type {
	case jtok.Object:
		for _, v := range cursor.Members(toks, i) {
			out = append(out, v)
		}
	case jtok.Array:
		for v := range cursor.Elements(toks, i) {
			out = append(out, v)
		}
	}
	return out
}

func sliceBound(b *int, dflt, n int) int {
	if b == nil {
		return dflt
	}
	v := *b
	if v < 0 {
		v += n
	}
	return min(max(v, 0), n)
}
