package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func env(vals map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vals[k]
		return v, ok
	}
}

func TestEnv(t *testing.T) {
	dir := t.TempDir()
	exe := touch(t, filepath.Join(dir, "Rscript"))

	p, err := Env{Var: "RSCRIPT_PATH", Lookup: env(map[string]string{"RSCRIPT_PATH": exe})}.Locate()
	require.NoError(t, err)
	assert.Equal(t, exe, p)

	_, err = Env{Var: "RSCRIPT_PATH", Lookup: env(nil)}.Locate()
	assert.True(t, errors.Is(err, ErrNotFound))

	missing := filepath.Join(dir, "nope")
	_, err = Env{Var: "RSCRIPT_PATH", Lookup: env(map[string]string{"RSCRIPT_PATH": missing})}.Locate()
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []string{missing}, nf.Tried)
}

func TestScanNewestFirst(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "R-4.2.0", "bin", "Rscript"))
	newest := touch(t, filepath.Join(root, "R-4.10.1", "bin", "x64", "Rscript"))
	touch(t, filepath.Join(root, "R-4.9.3", "bin", "Rscript"))

	p, err := Scan{Roots: []string{root}, Exe: "Rscript"}.Locate()
	require.NoError(t, err)
	assert.Equal(t, newest, p)
}

func TestScanPrefersBinOverX64(t *testing.T) {
	root := t.TempDir()
	bin := touch(t, filepath.Join(root, "4.3", "bin", "Rscript"))
	touch(t, filepath.Join(root, "4.3", "bin", "x64", "Rscript"))

	p, err := Scan{Roots: []string{root}, Exe: "Rscript"}.Locate()
	require.NoError(t, err)
	assert.Equal(t, bin, p)
}

func TestScanExtraAndMiss(t *testing.T) {
	dir := t.TempDir()
	extra := touch(t, filepath.Join(dir, "alt", "Rscript"))

	p, err := Scan{Roots: []string{filepath.Join(dir, "missing")}, Exe: "Rscript", Extra: []string{extra}}.Locate()
	require.NoError(t, err)
	assert.Equal(t, extra, p)

	_, err = Scan{Roots: []string{dir}, Exe: "Rscript"}.Locate()
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	exe := touch(t, filepath.Join(dir, ExeName("klaro-fake-rscript")))
	t.Setenv("PATH", dir)

	p, err := Path{Name: "klaro-fake-rscript"}.Locate()
	require.NoError(t, err)
	assert.Equal(t, exe, p)

	_, err = Path{Name: "klaro-definitely-missing"}.Locate()
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestChain(t *testing.T) {
	dir := t.TempDir()
	exe := touch(t, filepath.Join(dir, "v1", "bin", "Rscript"))

	c := Chain{EnvVar: "RSCRIPT_PATH", Strategies: []Locator{
		Env{Var: "RSCRIPT_PATH", Lookup: env(nil)},
		Scan{Roots: []string{dir}, Exe: "Rscript"},
	}}
	p, err := c.Locate()
	require.NoError(t, err)
	assert.Equal(t, exe, p)

	miss := Chain{EnvVar: "RSCRIPT_PATH", Strategies: []Locator{
		Env{Var: "RSCRIPT_PATH", Lookup: env(map[string]string{"RSCRIPT_PATH": "/no/Rscript"})},
		Path{Name: "klaro-definitely-missing"},
	}}
	_, err = miss.Locate()
	require.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "RSCRIPT_PATH")
	assert.Contains(t, err.Error(), "/no/Rscript")
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"R-4.10.0", "R-4.9.1", 1},
		{"R-4.2.0", "R-4.2.0", 0},
		{"3.6", "4.0", -1},
		{"4.1", "4.1.2", -1},
	}
	for _, tt := range tests {
		got := compareVersions(tt.a, tt.b)
		if sign(got) != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
