package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format is one primitive binary encoding.
// Tokens follow the struct-module letters the data files were first mapped with:
//
//	b/B  1-byte signed/unsigned
//	h/H  2-byte signed/unsigned
//	i/I  4-byte signed/unsigned (l/L are accepted as aliases)
//	Ns   fixed N-byte string
//
// Everything is little-endian and packed, there is no alignment padding anywhere in GDATA.
type Format struct {
	Token  string
	Width  int
	Signed bool
	Bytes  bool
}

// Min and Max are the inclusive range of an integer format.
func (f Format) Min() int64 {
	if !f.Signed {
		return 0
	}
	return -(1 << (8*f.Width - 1))
}

func (f Format) Max() int64 {
	if f.Signed {
		return 1<<(8*f.Width-1) - 1
	}
	if f.Width >= 8 {
		return math.MaxInt64
	}
	return 1<<(8*f.Width) - 1
}

// Fits reports whether n can be stored without wraparound.
func (f Format) Fits(n int64) bool {
	return !f.Bytes && n >= f.Min() && n <= f.Max()
}

func (f Format) String() string { return f.Token }

var intFormats = map[byte]Format{
	'b': {Width: 1, Signed: true},
	'B': {Width: 1},
	'h': {Width: 2, Signed: true},
	'H': {Width: 2},
	'i': {Width: 4, Signed: true},
	'I': {Width: 4},
	'l': {Width: 4, Signed: true},
	'L': {Width: 4},
}

// ParseFormats splits a token string such as "IIHBB" or "III13s" into formats, left to right.
// A leading "<" (the little-endian marker) is tolerated since it is the only byte order we speak.
// A count before an integer letter repeats it ("3I" == "III"); before "s" it is the string width.
func ParseFormats(s string) ([]Format, error) {
	s = strings.TrimPrefix(s, "<")
	out := []Format{}
	count := ""
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			count += string(c)
			continue
		}
		n := 1
		if count != "" {
			var err error
			n, err = strconv.Atoi(count)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("%w: bad count %q in %q", ErrUnknownFormat, count, s)
			}
		}
		if c == 's' {
			out = append(out, Format{Token: strconv.Itoa(n) + "s", Width: n, Bytes: true})
			count = ""
			continue
		}
		f, ok := intFormats[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrUnknownFormat, string(c), s)
		}
		f.Token = string(c)
		for range n {
			out = append(out, f)
		}
		count = ""
	}
	if count != "" {
		return nil, fmt.Errorf("%w: dangling count %q in %q", ErrUnknownFormat, count, s)
	}
	return out, nil
}

// ParseFormat parses a token that must describe exactly one value.
func ParseFormat(token string) (Format, error) {
	fs, err := ParseFormats(token)
	if err != nil {
		return Format{}, err
	}
	if len(fs) != 1 {
		return Format{}, fmt.Errorf("%w: %q describes %v values, expected 1", ErrUnknownFormat, token, len(fs))
	}
	return fs[0], nil
}

func joinFormats(fs []Format) string {
	var b strings.Builder
	b.WriteString("<")
	for _, f := range fs {
		b.WriteString(f.Token)
	}
	return b.String()
}
