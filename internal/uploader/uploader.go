// Package uploader posts a finished match's serialized history to an
// optional replay backend. spec.md §1 places the backend and its
// protocol explicitly outside the core's redesign boundary ("the HTTP
// post-game upload to a replay backend... Their only contract with the
// core is supplying configuration values and consuming serialized
// history"), so this is deliberately the thinnest possible client: one
// POST of the marshaled document, no retries, no auth.
package uploader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// HTTPUploader POSTs a match replay to a configured URL.
type HTTPUploader struct {
	URL    string
	Client *http.Client
}

// New returns an HTTPUploader for url using http.DefaultClient's
// timeout policy (none), matching the teacher's own plain net/http
// usage elsewhere.
func New(url string) *HTTPUploader {
	return &HTTPUploader{URL: url, Client: http.DefaultClient}
}

// Upload posts body (a marshaled history.Document) as
// application/json. A non-2xx response is returned as an error; the
// caller logs it, since a failed upload must never affect match
// shutdown (spec.md §7 lists no error class for this path).
func (u *HTTPUploader) Upload(ctx context.Context, body []byte) error {
	if u.URL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("uploader: backend returned %s", resp.Status)
	}
	return nil
}
