package text

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/david-erel/short-tube/internal/highlight"
)

// HTTPSource fetches transcripts from a subtitle service exposing
// GET {base}/videos/{id}/transcript as JSON.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns an HTTPSource for the given base URL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements TranscriptSource.
func (s *HTTPSource) Fetch(ctx context.Context, videoID string) (highlight.Transcript, error) {
	u := s.baseURL + "/videos/" + url.PathEscape(videoID) + "/transcript"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return highlight.Transcript{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return highlight.Transcript{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return highlight.Transcript{}, fmt.Errorf("transcript service status %d", resp.StatusCode)
	}

	var tr highlight.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return highlight.Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	return tr, nil
}
