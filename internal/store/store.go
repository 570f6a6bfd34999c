// Package store persists user preferences as YAML under the data
// directory (~/.climadash by default). Readings are never written to disk.
package store

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	dirName  = ".climadash"
	fileName = "prefs.yaml"
)

// Prefs is everything remembered between runs.
type Prefs struct {
	Theme string `yaml:"theme,omitempty"`
	Range string `yaml:"range,omitempty"`
}

// PrefStore reads and writes Prefs in a single file.
type PrefStore struct {
	dir string
}

// New returns a store rooted at dir. An empty dir means DataDir().
func New(dir string) (*PrefStore, error) {
	if dir == "" {
		dir = DataDir()
	}
	if dir == "" {
		return nil, errors.New("cannot find home dir")
	}
	return &PrefStore{dir: dir}, nil
}

// Path is the preferences file location.
func (s *PrefStore) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Load returns the stored preferences. A missing or empty file yields
// zero Prefs.
func (s *PrefStore) Load() (Prefs, error) {
	var p Prefs
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, errors.Wrap(err, "read prefs")
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Prefs{}, errors.Wrapf(err, "parse %s", s.Path())
	}
	return p, nil
}

// Save writes p atomically.
func (s *PrefStore) Save(p Prefs) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "encode prefs")
	}

	path := s.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return errors.Wrap(err, "write prefs")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace prefs")
}

// Update loads, applies fn and saves.
func (s *PrefStore) Update(fn func(*Prefs)) error {
	p, err := s.Load()
	if err != nil {
		return err
	}
	fn(&p)
	return s.Save(p)
}

// DataDir returns the default data directory, or "" when there is no home.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, dirName)
}
