// Package gdata loads and saves the game's GDATA data files.
//
// A Manager binds one known file type to one file on disk:
//
//	m := gdata.New(tables.ByFile["CAPSHPSD.DAT"], gameDir)
//	if err := m.Load(); err != nil {
//	    return err
//	}
//	for _, r := range m.Records {
//	    if r.Int("imperial") == 1 {
//	        r.SetInt("maintenance", r.Int("maintenance")*8/10)
//	    }
//	}
//	return m.Save()
//
// Records can be changed freely between Load and Save. Save recomputes the header count and
// refuses to write anything if a record no longer fits its schema.
package gdata

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"swredit/readers"
	"swredit/types"
	"swredit/writers"
)

// NameResolver looks up display strings by id. Failure is a normal outcome, not an error.
type NameResolver interface {
	Text(id uint32) (string, bool)
}

type noNames struct{}

func (noNames) Text(uint32) (string, bool) { return "", false }

type State int

const (
	Unloaded State = iota
	Loaded
	Saved
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Saved:
		return "saved"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Option func(*Manager)

// WithNames decorates every loaded record with the file type's name fields.
func WithNames(r NameResolver) Option {
	return func(m *Manager) {
		if r == nil {
			r = noNames{}
		}
		m.names = r
		m.resolve = true
	}
}

// WithBackup keeps the previous file as <name>.old on every save.
func WithBackup(backup bool) Option {
	return func(m *Manager) { m.backup = backup }
}

func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// Manager owns one data file for a load/mutate/save cycle.
// Two managers must not target the same path at the same time; nothing is locked.
type Manager struct {
	Type *types.FileType
	Path string

	Header      types.Header
	Records     []*types.Record
	HeaderCount int    // count read from the header at load time
	Checksum    string // md5 of the bytes last read or written

	state   State
	names   NameResolver
	resolve bool
	backup  bool
	log     *slog.Logger
}

func New(ft *types.FileType, baseDir string, opts ...Option) *Manager {
	m := &Manager{
		Type:  ft,
		Path:  filepath.Join(baseDir, ft.Location, ft.Filename),
		names: noNames{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("file", ft.Filename)
	return m
}

func (m *Manager) State() State { return m.state }

// Pristine reports whether the last bytes seen are the shipped reference file.
func (m *Manager) Pristine() bool {
	return m.state != Unloaded && m.Checksum == m.Type.ExpectedChecksum
}

func (m *Manager) reset() {
	m.state = Unloaded
	m.Header = types.Header{}
	m.Records = nil
	m.HeaderCount = 0
	m.Checksum = ""
}

// Load reads and decodes the whole file. On failure the manager is left Unloaded.
func (m *Manager) Load() error {
	m.reset()

	data, err := os.ReadFile(m.Path)
	if err != nil {
		return errors.Wrapf(err, "load %v", m.Type.Filename)
	}

	header, records, checksum, err := m.decode(data)
	if err != nil {
		return fmt.Errorf("load %v: %w", m.Type.Filename, err)
	}

	if m.resolve {
		for _, r := range records {
			m.resolveNames(r)
		}
	}

	m.Header = header
	m.Records = records
	m.HeaderCount = int(header.Count)
	m.Checksum = checksum
	m.state = Loaded

	m.log.Debug("loaded", "records", len(records), "header", header.String(), "checksum", checksum, "pristine", m.Pristine())
	return nil
}

func (m *Manager) decode(data []byte) (types.Header, []*types.Record, string, error) {
	s := m.Type.Schema
	checksum := Checksum(data)

	if len(data) < s.HeaderWidth() {
		return types.Header{}, nil, "", fmt.Errorf("%w: %v bytes is shorter than the %v byte header", types.ErrMalformedRecord, len(data), s.HeaderWidth())
	}

	header, err := readers.DecodeHeader(s, data[:s.HeaderWidth()])
	if err != nil {
		return types.Header{}, nil, "", err
	}

	if err := Validate(header, m.Type.ExpectedHeader, checksum, m.Type.ExpectedChecksum); err != nil {
		var hm *types.HeaderMismatchError
		if errors.As(err, &hm) {
			hm.File = m.Type.Filename
		}
		return types.Header{}, nil, "", err
	}

	records, err := readers.DecodeAll(s, data[s.HeaderWidth():])
	if err != nil {
		return types.Header{}, nil, "", err
	}

	if s.Family() != types.FamilyGrouped && len(records) != int(header.Count) {
		return types.Header{}, nil, "", fmt.Errorf("%w: header says %v, file holds %v", types.ErrCountMismatch, header.Count, len(records))
	}

	return header, records, checksum, nil
}

func (m *Manager) resolveNames(r *types.Record) {
	rules := m.Type.Names
	for _, rule := range rules {
		id, ok := r.Get(rule.Key)
		if !ok || id.Kind != types.KindInt {
			r.Set(rule.Field, types.AbsentValue())
			continue
		}
		n := id.Int + rule.Offset
		if n < 0 || n > 0xffffffff {
			r.Set(rule.Field, types.AbsentValue())
			continue
		}
		text, ok := m.names.Text(uint32(n))
		if !ok {
			r.Set(rule.Field, types.AbsentValue())
			continue
		}
		r.Set(rule.Field, types.TextValue(text))
	}
}

// Count is the header count the current records would be saved with.
func (m *Manager) Count() (int, error) {
	return Count(m.Type.Schema, m.Records)
}

// Prepare builds the complete output file in memory without writing it.
func (m *Manager) Prepare() ([]byte, error) {
	s := m.Type.Schema

	count, err := m.Count()
	if err != nil {
		return nil, err
	}
	if count < 0 || int64(count) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: count %v", types.ErrFieldRange, count)
	}
	header := m.Type.ExpectedHeader.WithCount(uint32(count))

	out, err := writers.EncodeHeader(s, header)
	if err != nil {
		return nil, err
	}
	body, err := writers.EncodeAll(s, m.Records)
	if err != nil {
		return nil, err
	}
	return append(out, body...), nil
}

// Save writes the records back. It panics if nothing was ever loaded: saving an empty manager
// would replace a game file with a header and nothing else.
func (m *Manager) Save() error {
	if m.state == Unloaded {
		panic(fmt.Sprintf("gdata: Save called on unloaded %v", m.Type.Filename))
	}

	data, err := m.Prepare()
	if err != nil {
		return fmt.Errorf("save %v: %w", m.Type.Filename, err)
	}

	if err := writeFile(m.Path, data, m.backup); err != nil {
		return errors.Wrapf(err, "save %v", m.Type.Filename)
	}

	count, _ := m.Count()
	m.Header = m.Type.ExpectedHeader.WithCount(uint32(count))
	m.HeaderCount = count
	m.Checksum = Checksum(data)
	m.state = Saved

	m.log.Debug("saved", "records", len(m.Records), "count", count, "checksum", m.Checksum, "backup", m.backup)
	return nil
}

// BackupPath is where the previous version goes when backups are on: FIGHTSD.DAT -> FIGHTSD.old
func BackupPath(path string) string {
	return path[:len(path)-len(filepath.Ext(path))] + ".old"
}

// writeFile replaces path with data: temp file, fsync, close, rename.
func writeFile(path string, data []byte, backup bool) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	// CreateTemp makes 0600 files; keep whatever the file being replaced had
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		return cleanup(errors.Wrap(err, "chmod temp file"))
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(errors.Wrap(err, "write temp file"))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(errors.Wrap(err, "sync temp file"))
	}
	// Close before renaming, Windows won't rename an open file
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "close temp file")
	}

	backedUp := false
	if backup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, BackupPath(path)); err != nil {
				os.Remove(tmpPath)
				return errors.Wrap(err, "back up previous file")
			}
			backedUp = true
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		if backedUp {
			// put the original back where the game expects it
			os.Rename(BackupPath(path), path)
		}
		return errors.Wrap(err, "replace file")
	}
	return nil
}
