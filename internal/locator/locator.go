// Package locator finds the external solver's interpreter. Each strategy either
// returns an executable path or ErrNotFound; Chain tries them in order.
package locator

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// DefaultEnvVar names the explicit interpreter override.
const DefaultEnvVar = "RSCRIPT_PATH"

// ErrNotFound means no strategy produced an existing executable.
var ErrNotFound = errors.New("solver not found")

// Locator resolves the interpreter path.
type Locator interface {
	Locate() (string, error)
}

// NotFoundError lists every candidate that was checked.
type NotFoundError struct {
	Tried  []string
	EnvVar string
}

func (e *NotFoundError) Error() string {
	msg := "solver not found"
	if e.EnvVar != "" {
		msg += fmt.Sprintf("; install it, add it to PATH or set %s to its full path", e.EnvVar)
	}
	if len(e.Tried) > 0 {
		msg += ". Tried: " + strings.Join(e.Tried, ", ")
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ExeName returns the interpreter file name for this platform.
func ExeName(base string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(base), ".exe") {
		return base + ".exe"
	}
	return base
}

// Env reads an explicit path from an environment variable. The path must exist.
type Env struct {
	Var    string
	Lookup func(string) (string, bool)
}

func (l Env) Locate() (string, error) {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	p, ok := lookup(l.Var)
	if !ok || p == "" {
		return "", &NotFoundError{}
	}
	if !isFile(p) {
		return "", &NotFoundError{Tried: []string{p}}
	}
	return p, nil
}

// Scan looks under each root for <root>/<version>/bin/<exe> and
// <root>/<version>/bin/x64/<exe>, newest version first, then checks Extra
// candidates verbatim.
type Scan struct {
	Roots []string
	Exe   string
	Extra []string
}

func (l Scan) Locate() (string, error) {
	var tried []string
	for _, root := range l.Roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		var versions []string
		for _, e := range entries {
			if e.IsDir() {
				versions = append(versions, e.Name())
			}
		}
		sort.Slice(versions, func(i, j int) bool {
			return compareVersions(versions[i], versions[j]) > 0
		})
		for _, v := range versions {
			for _, cand := range []string{
				filepath.Join(root, v, "bin", l.Exe),
				filepath.Join(root, v, "bin", "x64", l.Exe),
			} {
				tried = append(tried, cand)
				if isFile(cand) {
					return cand, nil
				}
			}
		}
	}
	for _, cand := range l.Extra {
		tried = append(tried, cand)
		if isFile(cand) {
			return cand, nil
		}
	}
	return "", &NotFoundError{Tried: tried}
}

// Path searches PATH for Name.
type Path struct {
	Name string
}

func (l Path) Locate() (string, error) {
	p, err := exec.LookPath(l.Name)
	if err != nil {
		return "", &NotFoundError{Tried: []string{l.Name}}
	}
	return p, nil
}

// Chain returns the first strategy's hit. When all miss, the error names every
// tried path and the override variable.
type Chain struct {
	Strategies []Locator
	EnvVar     string
}

func (c Chain) Locate() (string, error) {
	nf := &NotFoundError{EnvVar: c.EnvVar}
	for _, s := range c.Strategies {
		p, err := s.Locate()
		if err == nil {
			return p, nil
		}
		var e *NotFoundError
		if !errors.As(err, &e) {
			return "", err
		}
		nf.Tried = append(nf.Tried, e.Tried...)
	}
	return "", nf
}

// Default builds the standard chain: override variable, platform install roots,
// then PATH.
func Default(envVar string, roots []string) Chain {
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	exe := ExeName("Rscript")
	if roots == nil {
		roots = DefaultRoots()
	}
	var extra []string
	if runtime.GOOS == "windows" {
		extra = []string{filepath.Join(`C:\`, "R", "bin", exe)}
	}
	return Chain{
		EnvVar: envVar,
		Strategies: []Locator{
			Env{Var: envVar},
			Scan{Roots: roots, Exe: exe, Extra: extra},
			Path{Name: "Rscript"},
		},
	}
}

// DefaultRoots are the directories holding versioned interpreter installs.
func DefaultRoots() []string {
	switch runtime.GOOS {
	case "windows":
		pf := os.Getenv("ProgramFiles")
		if pf == "" {
			pf = `C:\Program Files`
		}
		return []string{filepath.Join(pf, "R")}
	case "darwin":
		return []string{"/Library/Frameworks/R.framework/Versions"}
	default:
		return []string{"/opt/R"}
	}
}

func isFile(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// compareVersions orders names like "R-4.10.1" numerically by their digit runs,
// falling back to byte order for the non-numeric parts.
func compareVersions(a, b string) int {
	ta, tb := tokens(a), tokens(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		nx, errX := strconv.Atoi(x)
		ny, errY := strconv.Atoi(y)
		if errX == nil && errY == nil {
			if nx != ny {
				if nx < ny {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(x, y); c != 0 {
			return c
		}
	}
	return len(ta) - len(tb)
}

func tokens(s string) []string {
	var out []string
	var cur strings.Builder
	digit := false
	for i, r := range s {
		d := unicode.IsDigit(r)
		if i > 0 && d != digit {
			out = append(out, cur.String())
			cur.Reset()
		}
		digit = d
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
