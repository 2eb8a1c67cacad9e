package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Place struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	PlaceID string  `json:"placeId"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Searcher resolves a free-text query to at most limit places.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Place, error)
}

// TextSearchClient talks to a Places "Text Search" style endpoint:
// GET {BaseURL}/textsearch/json?query=...&key=...
type TextSearchClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewTextSearchClient(baseURL, apiKey string, timeout time.Duration) *TextSearchClient {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TextSearchClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

type textSearchResp struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		PlaceID          string `json:"place_id"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("places: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("places: %s: %s", e.Status, e.Message)
}

func (c *TextSearchClient) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if c.Client == nil {
		return nil, errors.New("places: http client is nil")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("places: api key is required")
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.APIKey)
	u := fmt.Sprintf("%s/textsearch/json?%s", strings.TrimRight(c.BaseURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var decoded textSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("places: decode: %w", err)
	}
	switch decoded.Status {
	case "OK", "ZERO_RESULTS":
	default:
		return nil, &StatusError{Status: decoded.Status, Message: decoded.ErrorMessage}
	}

	out := make([]Place, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, Place{
			Name:    r.Name,
			Address: r.FormattedAddress,
			PlaceID: r.PlaceID,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
		})
	}
	return out, nil
}
