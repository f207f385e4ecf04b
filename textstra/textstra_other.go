//go:build !windows

package textstra

// Library is never available off Windows.
type Library struct{}

func open(string) (*Library, error) {
	return nil, ErrUnavailable
}

func (l *Library) Text(uint32) (string, bool) { return "", false }

func (l *Library) Close() error { return nil }
