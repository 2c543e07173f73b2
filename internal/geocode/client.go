package geocode

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Point is a resolved latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

// Client resolves free-text place names against a Nominatim-compatible
// search endpoint. One lookup per call: no retries, no caching. The short
// timeout keeps a slow upstream from stalling post creation.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a geocoding client. The user agent must identify this
// deployment with a contact address, per the upstream usage policy.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Lookup resolves "place country" to coordinates. It returns ok=false when
// the query is empty, the request fails, the upstream answers non-200, or no
// result comes back; callers degrade to a post without coordinates.
func (c *Client) Lookup(ctx context.Context, country, place string) (Point, bool) {
	query := strings.TrimSpace(place + " " + country)
	if query == "" {
		return Point{}, false
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return Point{}, false
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Point{}, false
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil || len(results) == 0 {
		return Point{}, false
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, false
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lng}, true
}
