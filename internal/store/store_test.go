package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

func TestNewDefaults(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, "", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Data", "ToReceive.json"), s.RequestPath())
	assert.Equal(t, filepath.Join(root, "Data", "ToSend.json"), s.ResultPath())
	assert.Equal(t, root, s.Root())

	abs := filepath.Join(root, "elsewhere.json")
	s, err = New(root, abs, "")
	require.NoError(t, err)
	assert.Equal(t, abs, s.RequestPath())

	_, err = New(" ", "", "")
	assert.Error(t, err)
}

func TestWriteRequestCompact(t *testing.T) {
	s, _ := New(t.TempDir(), "", "")
	req := &optimize.Request{
		Projects: []optimize.ProjectInput{{Name: "A", Data: []float64{1, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0}}},
		Goals:    []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
	require.NoError(t, s.WriteRequest(context.Background(), req))

	data, err := os.ReadFile(s.RequestPath())
	require.NoError(t, err)
	assert.Equal(t, `{"projects":[{"name":"A","data":[1,2,0,0,0,0,0,0,0,0,0]}],"goals":[1,2,3,4,5,6,7,8,9,10]}`, string(data))
}

func TestWriteResultReplaces(t *testing.T) {
	s, _ := New(t.TempDir(), "", "")
	_, err := s.ReadResult()
	assert.True(t, errors.Is(err, ErrNoResult))

	require.NoError(t, s.WriteResult(context.Background(), map[string]any{"note": "first", "old": true}))
	require.NoError(t, s.WriteResult(context.Background(), map[string]any{"note": "second"}))

	data, err := s.ReadResult()
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{"note": "second"}, got, "document must be replaced wholesale")

	entries, err := os.ReadDir(filepath.Dir(s.ResultPath()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp files must not be left behind")
	}
}

func TestWriteFailure(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "Data")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	s, _ := New(root, "", "")
	err := s.WriteRequest(context.Background(), &optimize.Request{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWrite))
}

func TestWriteCancelled(t *testing.T) {
	s, _ := New(t.TempDir(), "", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.WriteResult(ctx, map[string]any{})
	assert.True(t, errors.Is(err, context.Canceled))
	_, err = s.ReadResult()
	assert.True(t, errors.Is(err, ErrNoResult))
}
