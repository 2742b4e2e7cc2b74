// Package fetch loads the model asset from its configured source: an
// http(s) URL or a local file path.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kelthar/rigview/internal/logger"
)

// ErrEmptySource means no model source was configured.
var ErrEmptySource = errors.New("no model source configured")

// Result carries the outcome of an asynchronous load.
type Result struct {
	Data []byte
	Err  error
}

var client = &http.Client{Timeout: 30 * time.Second}

// Fetch reads the asset bytes. URLs get a single GET with no retry;
// anything else is read as a file path.
func Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, ErrEmptySource
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchURL(ctx, source)
	}
	return os.ReadFile(source)
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	logger.Sugar.Infof("fetched %s: %d bytes in %v", url, len(data), time.Since(start).Round(time.Millisecond))
	return data, nil
}

// Go runs Fetch on its own goroutine and delivers the result on the
// returned channel. The channel is buffered so an abandoned load does
// not leak the goroutine.
func Go(source string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		data, err := Fetch(context.Background(), source)
		ch <- Result{Data: data, Err: err}
	}()
	return ch
}
