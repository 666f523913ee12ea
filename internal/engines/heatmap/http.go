package heatmap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSource fetches replay heatmaps from a metadata service exposing
// GET {base}/videos/{id}/heatmap as a JSON array of markers.
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

// Fetch implements MarkerSource.
func (s *HTTPSource) Fetch(ctx context.Context, videoID string) ([]Marker, error) {
	u := s.baseURL + "/videos/" + url.PathEscape(videoID) + "/heatmap"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("heatmap service status %d", resp.StatusCode)
	}

	var markers []Marker
	if err := json.NewDecoder(resp.Body).Decode(&markers); err != nil {
		return nil, fmt.Errorf("decode heatmap: %w", err)
	}
	return markers, nil
}
