//go:build windows

package textstra

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procLoadStringW = user32.NewProc("LoadStringW")
)

// Library is TEXTSTRA.DLL mapped as a data file. Nothing in it is ever executed.
type Library struct {
	module windows.Handle
}

func open(path string) (*Library, error) {
	if err := procLoadStringW.Find(); err != nil {
		return nil, ErrUnavailable
	}
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_LIBRARY_AS_DATAFILE)
	if err != nil {
		return nil, err
	}
	return &Library{module: h}, nil
}

// Text returns the string resource with the given id.
func (l *Library) Text(id uint32) (string, bool) {
	if l == nil || l.module == 0 {
		return "", false
	}
	// String resources are at most 4097 UTF-16 units
	buf := make([]uint16, 4097)
	n, _, _ := procLoadStringW.Call(uintptr(l.module), uintptr(id), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", false
	}
	return windows.UTF16ToString(buf[:n]), true
}

func (l *Library) Close() error {
	if l == nil || l.module == 0 {
		return nil
	}
	err := windows.FreeLibrary(l.module)
	l.module = 0
	return err
}
