package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ChicagoDave/klaro/pkg/optimize"
)

// DocumentPath is where the gateway serves the latest result document.
const DocumentPath = "/Data/ToSend.json"

// ErrNoResults means no result document has been written yet.
var ErrNoResults = errors.New("no results")

// Fetcher reads the result document from a running gateway.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
	Now     func() time.Time
}

// NewFetcher returns a fetcher for the gateway at baseURL.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
		Now:     time.Now,
	}
}

// Fetch downloads and parses the document, bypassing any cache. A 404 returns
// ErrNoResults.
func (f *Fetcher) Fetch(ctx context.Context) (*optimize.Document, error) {
	url := f.BaseURL + DocumentPath + "?t=" + strconv.FormatInt(f.Now().UnixNano(), 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoResults
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return optimize.ParseDocument(body)
}

// View fetches the document and decides how to show it.
func (f *Fetcher) View(ctx context.Context) View {
	return viewOf(f.Fetch(ctx))
}

// FetchFile reads a document straight from disk. A missing file returns
// ErrNoResults.
func FetchFile(path string) (*optimize.Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, err
	}
	return optimize.ParseDocument(data)
}

// ViewFile is View for a document on disk.
func ViewFile(path string) View {
	return viewOf(FetchFile(path))
}

func viewOf(doc *optimize.Document, err error) View {
	switch {
	case errors.Is(err, ErrNoResults):
		return NoResults()
	case err != nil:
		return Failed(err)
	}
	return Build(doc)
}
