package utils

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"swredit/types"
)

// Smash smashes "funny characters" (which includes anything that's remotely tricky to type into a
// command line) in a string into the '_' character.
func Smash(in string) string {
	var sb strings.Builder
	for _, c := range in {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			sb.WriteRune(c)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func loose(s string) string { return Smash(strings.ToUpper(s)) }

// string matching functions, in strictly increasing order of desperation
var fuzzy = []func(input string, candidate string) bool{
	func(i string, c string) bool { return i == c },
	func(i string, c string) bool { return strings.EqualFold(i, c) },
	func(i string, c string) bool { return loose(i) == loose(c) },
	func(i string, c string) bool { return strings.HasPrefix(loose(c), loose(i)) },
	func(i string, c string) bool { return strings.Contains(loose(c), loose(i)) },
}

var ErrNoMatch = errors.New("no match")
var ErrAmbiguous = errors.New("ambiguous")

// FuzzyMatch finds the one candidate meant by input, so "cap" finds "CAPSHPSD.DAT" and
// "maint" finds "maintenance". The first matcher with any hits decides.
//
// what is the kind of thing being looked up, for error messages.
func FuzzyMatch(input string, candidates []string, what string) (string, error) {
	for _, match := range fuzzy {
		matches := []string{}
		for _, c := range candidates {
			if match(input, c) {
				matches = append(matches, c)
			}
		}
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			slices.Sort(matches)
			return "", errors.Wrapf(ErrAmbiguous, "%v could be any %v from {%v}", input, what, strings.Join(matches, ", "))
		}
		return matches[0], nil
	}
	return "", errors.Wrapf(ErrNoMatch, "%v could not be matched to a %v", input, what)
}

// ListUnprocessed lists the .DAT files in dataDir that no known file type covers, sorted.
func ListUnprocessed(dataDir string, known []*types.FileType) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "list data files")
	}

	seen := map[string]bool{}
	for _, ft := range known {
		seen[strings.ToUpper(ft.Filename)] = true
	}

	out := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".DAT") {
			continue
		}
		if !seen[strings.ToUpper(name)] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}
