// Package textstra resolves the game's display strings.
//
// Names of ships, characters, sectors and so on are not in the data files. They live as string
// resources in TEXTSTRA.DLL in the game directory, keyed by the name_id fields of the records.
// Reading them needs the Windows resource loader, so everywhere else Open fails with
// ErrUnavailable and callers should fall back to Nop.
package textstra

import (
	"errors"
	"path/filepath"
)

// Filename is the resource library, relative to the game directory.
const Filename = "TEXTSTRA.DLL"

var ErrUnavailable = errors.New("textstra: string resources are not available on this platform")

// Nop resolves nothing.
type Nop struct{}

func (Nop) Text(uint32) (string, bool) { return "", false }

// Static resolves from a fixed table.
type Static map[uint32]string

func (s Static) Text(id uint32) (string, bool) {
	text, ok := s[id]
	return text, ok
}

// Open loads TEXTSTRA.DLL from the game directory.
func Open(gameDir string) (*Library, error) {
	return open(filepath.Join(gameDir, Filename))
}
