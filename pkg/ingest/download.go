package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const downloadAttempts = 3

// downloadBackoff is the wait before the second attempt; it doubles after.
var downloadBackoff = 2 * time.Second

var downloadClient = &http.Client{Timeout: 10 * time.Minute}

// StatusError is a non-200 answer from a source URL.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL) }

// temporary reports whether another attempt may succeed.
func (e *StatusError) temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Download fetches url into dest. Network failures and 5xx/429 answers are
// retried with exponential backoff; other statuses fail at once. The body is
// written to dest.part and renamed into place once complete.
func Download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	wait := downloadBackoff
	var err error
	for attempt := 1; ; attempt++ {
		err = fetchTo(ctx, url, dest)
		if err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.temporary() {
			return err
		}
		if attempt == downloadAttempts || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("download %s: giving up after %d attempts: %w", url, downloadAttempts, err)
}

// fetchTo performs one GET and moves the body into dest.
func fetchTo(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, Code: resp.StatusCode}
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// EnsureFile downloads url to path unless path already exists.
// It reports whether a download happened.
func EnsureFile(ctx context.Context, path, url string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if url == "" {
		return false, RequireFile(path)
	}
	if err := Download(ctx, url, path); err != nil {
		return false, err
	}
	return true, nil
}
