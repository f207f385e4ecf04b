// Package watch re-validates game data files whenever something writes to them, e.g. the game
// itself, another editor, or a modding script.
package watch

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"swredit/gdata"
	"swredit/types"
)

// Event reports the state of one data file after it changed on disk.
type Event struct {
	Filename string
	Checksum string
	Pristine bool // byte-identical to the shipped file
	Records  int
	Err      error // the file no longer loads
}

type Watcher interface {
	Start_watching(events chan<- *Event) error
	Stop_watching()
}

// New_watcher watches <dir>/GDATA for the given file types. settle is how long to wait after the last
// write before reading, so a writer can finish with the file.
func New_watcher(dir string, known []*types.FileType, settle time.Duration, log *slog.Logger) Watcher {
	if log == nil {
		log = slog.Default()
	}
	byName := map[string]*types.FileType{}
	for _, ft := range known {
		byName[strings.ToUpper(ft.Filename)] = ft
	}
	return &dir_watcher{
		dir:           dir,
		known:         byName,
		settle:        settle,
		log:           log,
		last_checksum: map[string]string{},
		pending:       map[string]*time.Timer{},
		done:          make(chan struct{}),
	}
}

type dir_watcher struct {
	dir    string
	known  map[string]*types.FileType
	settle time.Duration
	log    *slog.Logger

	watcher *fsnotify.Watcher
	out     chan<- *Event
	done    chan struct{}
	wg      sync.WaitGroup

	mu            sync.Mutex // serializes handling; guards everything below
	last_checksum map[string]string
	pending       map[string]*time.Timer
	stopped       bool
}

func (dw *dir_watcher) Start_watching(events chan<- *Event) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dw.watcher = watcher
	dw.out = events

	dw.load_state()

	if err := watcher.Add(filepath.Join(dw.dir, "GDATA")); err != nil {
		watcher.Close()
		return err
	}

	dw.wg.Add(1)
	go func() {
		defer dw.wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					dw.schedule(filepath.Base(event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				dw.log.Warn("watch error", "err", err)
			}
		}
	}()
	return nil
}

func (dw *dir_watcher) Stop_watching() {
	dw.mu.Lock()
	if dw.stopped {
		dw.mu.Unlock()
		return
	}
	dw.stopped = true
	close(dw.done)
	for name, t := range dw.pending {
		t.Stop()
		delete(dw.pending, name)
	}
	dw.mu.Unlock()

	if dw.watcher != nil {
		dw.watcher.Close()
	}
	dw.wg.Wait()
}

// load_state records the current checksums so only real changes are reported.
// (Otherwise the first save after starting would look like news, even if it wrote the same bytes.)
func (dw *dir_watcher) load_state() {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	for name, ft := range dw.known {
		m := gdata.New(ft, dw.dir, gdata.WithLogger(dw.log))
		if err := m.Load(); err == nil {
			dw.last_checksum[name] = m.Checksum
		}
	}
}

// schedule (re)starts the settle timer for a file.
// Writers often touch a file several times in a row (the game, for one, seems to write each
// file in a few chunks), so only the last write counts.
func (dw *dir_watcher) schedule(name string) {
	key := strings.ToUpper(name)
	if _, ok := dw.known[key]; !ok {
		return
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.stopped {
		return
	}
	if t, ok := dw.pending[key]; ok {
		t.Stop()
	}
	dw.pending[key] = time.AfterFunc(dw.settle, func() {
		dw.mu.Lock()
		delete(dw.pending, key)
		var ev *Event
		if !dw.stopped {
			ev = dw.handle_file(key)
		}
		dw.mu.Unlock()

		if ev != nil {
			select {
			case dw.out <- ev:
			case <-dw.done:
			}
		}
	})
}

// handle_file reloads one file. It returns nil when the contents are unchanged since the last look.
// Callers hold mu.
func (dw *dir_watcher) handle_file(key string) *Event {
	ft := dw.known[key]
	m := gdata.New(ft, dw.dir, gdata.WithLogger(dw.log))

	if err := m.Load(); err != nil {
		dw.log.Warn("changed file no longer loads", "file", ft.Filename, "err", err)
		delete(dw.last_checksum, key)
		return &Event{Filename: ft.Filename, Err: err}
	}

	if dw.last_checksum[key] == m.Checksum {
		dw.log.Debug("rewritten without changes", "file", ft.Filename)
		return nil
	}
	dw.last_checksum[key] = m.Checksum

	dw.log.Info("file changed", "file", ft.Filename, "records", len(m.Records), "pristine", m.Pristine())
	return &Event{
		Filename: ft.Filename,
		Checksum: m.Checksum,
		Pristine: m.Pristine(),
		Records:  len(m.Records),
	}
}
