package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

var (
	errFileIsDir = errors.New("storage file is dir")
)

// fileStore keeps every key in one JSON object. Each Put or Delete rewrites
// the whole file before returning.
type fileStore struct {
	fs   afero.Fs
	path string

	mu sync.Mutex
}

func NewFile(fs afero.Fs, path string) Storage {
	return &fileStore{
		fs:   fs,
		path: path,
	}
}

func (f *fileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readfile()
	if err != nil {
		return "", err
	}

	v, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}

	return v, nil
}

func (f *fileStore) Put(_ context.Context, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readfile()
	if err != nil {
		return err
	}

	for k, v := range entries {
		data[k] = v
	}

	return f.writefile(data)
}

func (f *fileStore) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readfile()
	if err != nil {
		return err
	}

	changed := false
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return f.writefile(data)
}

// readfile returns an empty map when the file does not exist yet.
func (f *fileStore) readfile() (map[string]string, error) {
	data := map[string]string{}

	finfo, err := f.fs.Stat(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}

	if finfo.IsDir() {
		return nil, errFileIsDir
	}

	b, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}

	return data, nil
}

// writefile replaces the file through a rename so a crash never leaves a
// half written object behind.
func (f *fileStore) writefile(data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, b, 0o600); err != nil {
		return err
	}

	return f.fs.Rename(tmp, f.path)
}
