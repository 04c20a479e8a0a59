// Package store keeps the solver's request and result files at fixed paths.
// Every write goes to a temp file in the same directory and is renamed over the
// target, so readers see either the old document or the new one, never a mix.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// Default file locations, relative to the store root.
const (
	DefaultRequestFile = "Data/ToReceive.json"
	DefaultResultFile  = "Data/ToSend.json"
)

var (
	// ErrWrite wraps every failure to persist a file.
	ErrWrite = errors.New("write failed")
	// ErrNoResult means no result document exists yet.
	ErrNoResult = errors.New("no result document")
)

// Store reads and writes the request and result documents.
type Store struct {
	root     string
	request  string
	result   string
	permFile os.FileMode
	permDir  os.FileMode
}

// New returns a store rooted at root. Relative file names resolve under root;
// empty names take the defaults.
func New(root, requestFile, resultFile string) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("store root: %w", os.ErrInvalid)
	}
	if requestFile == "" {
		requestFile = DefaultRequestFile
	}
	if resultFile == "" {
		resultFile = DefaultResultFile
	}
	return &Store{
		root:     root,
		request:  resolve(root, requestFile),
		result:   resolve(root, resultFile),
		permFile: 0o644,
		permDir:  0o755,
	}, nil
}

func resolve(root, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(root, filepath.FromSlash(name))
}

// Root is the directory the solver runs in.
func (s *Store) Root() string { return s.root }

// RequestPath is where the request is persisted for the solver.
func (s *Store) RequestPath() string { return s.request }

// ResultPath is where the solver and the gateway write the result document.
func (s *Store) ResultPath() string { return s.result }

// WriteRequest persists req as compact JSON.
func (s *Store) WriteRequest(ctx context.Context, req *optimize.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %v", ErrWrite, err)
	}
	return s.write(ctx, s.request, data)
}

// WriteResult replaces the result document with v, indented for reading.
func (s *Store) WriteResult(ctx context.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding result: %v", ErrWrite, err)
	}
	return s.write(ctx, s.result, data)
}

// ReadResult returns the raw result document.
func (s *Store) ReadResult() ([]byte, error) {
	data, err := os.ReadFile(s.result)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoResult
	}
	return data, err
}

func (s *Store) write(ctx context.Context, dest string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, s.permDir); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, s.permFile)

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	if err := replace(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %v", ErrWrite, dest, err)
	}
	_ = syncDir(dir)
	return nil
}
