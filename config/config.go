// Package config finds the game directory and reads swredit.ini.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "swredit.ini"

// DirEnv is the environment variable the original modding scripts used for the game directory.
const DirEnv = "SW_REBELLION_DIR"

type Config struct {
	Dir      string        // game directory, holding GDATA/ and TEXTSTRA.DLL
	LogLevel slog.Level
	Backup   bool          // keep <name>.old on save
	Settle   time.Duration // watch: wait this long after a write before reading
}

func Default() Config {
	return Config{LogLevel: slog.LevelInfo, Backup: true, Settle: 2 * time.Second}
}

// Load reads an ini file over the defaults. A missing file is not an error unless required.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	file, err := ini.Load(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %v", path)
	}

	// Classic read of values, default section can be represented as empty string
	cfg.Dir = file.Section("").Key("dir").String()

	if k := file.Section("log").Key("level"); k.String() != "" {
		level, err := ParseLevel(k.String())
		if err != nil {
			return cfg, errors.Wrapf(err, "%v: [log] level", path)
		}
		cfg.LogLevel = level
	}

	if k := file.Section("save").Key("backup"); k.String() != "" {
		b, err := k.Bool()
		if err != nil {
			return cfg, errors.Wrapf(err, "%v: [save] backup", path)
		}
		cfg.Backup = b
	}

	if k := file.Section("watch").Key("settle"); k.String() != "" {
		d, err := k.Duration()
		if err != nil {
			return cfg, errors.Wrapf(err, "%v: [watch] settle", path)
		}
		if d < 0 {
			return cfg, errors.Errorf("%v: [watch] settle must not be negative", path)
		}
		cfg.Settle = d
	}

	return cfg, nil
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, errors.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// ResolveDir picks the game directory: flag, then environment, then config file, then the
// current directory.
func ResolveDir(flag string, cfg Config) string {
	if flag != "" {
		return flag
	}
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	if cfg.Dir != "" {
		return cfg.Dir
	}
	wd, _ := os.Getwd()
	return wd
}
