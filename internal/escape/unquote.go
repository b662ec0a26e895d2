// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape decodes the contents of JSON string tokens.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// ErrIncomplete is reported for an escape sequence cut off by the end of the
// input.
var ErrIncomplete = errors.New("incomplete escape sequence")

// Unquote decodes the body of a JSON string, which must have its enclosing
// quotation marks already removed, and appends the result to dst.
//
// Escape sequences are replaced with their unescaped equivalents, and a UTF-16
// surrogate pair written as two \u escapes is combined into one rune. Invalid
// escapes and unpaired surrogates are replaced by the Unicode replacement rune.
// Unquote reports ErrIncomplete for an incomplete escape sequence.
func Unquote(dst []byte, src mem.RO) ([]byte, error) {
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dst, src), nil
	}
	for {
		dst = mem.Append(dst, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, ErrIncomplete
		}

		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\\', '/':
			dst = append(dst, c)
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			r, rest, err := decodeU(src)
			if err != nil {
				return nil, err
			}
			dst = utf8.AppendRune(dst, r)
			src = rest
		default:
			dst = utf8.AppendRune(dst, utf8.RuneError)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(dst, src), nil
		}
	}
}

// decodeU decodes the hex digits of a \u escape at the front of src, along
// with the low half of a surrogate pair if one follows.
func decodeU(src mem.RO) (rune, mem.RO, error) {
	if src.Len() < 4 {
		return 0, src, ErrIncomplete
	}
	r, ok := parseHex(src.SliceTo(4))
	src = src.SliceFrom(4)
	if !ok {
		return utf8.RuneError, src, nil
	} else if !utf16.IsSurrogate(r) {
		return r, src, nil
	}

	// A high surrogate must be followed by \uXXXX holding the low half.
	if src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
		if lo, ok := parseHex(src.Slice(2, 6)); ok {
			if dec := utf16.DecodeRune(r, lo); dec != utf8.RuneError {
				return dec, src.SliceFrom(6), nil
			}
		}
	}
	return utf8.RuneError, src, nil
}

func parseHex(data mem.RO) (rune, bool) {
	var v rune
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case '0' <= b && b <= '9':
			v += rune(b - '0')
		case 'a' <= b && b <= 'f':
			v += rune(b - 'a' + 10)
		case 'A' <= b && b <= 'F':
			v += rune(b - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
