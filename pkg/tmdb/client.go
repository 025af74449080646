package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a thin proxy client for The Movie Database v3 API. Responses are
// passed through as raw JSON; the catalog pages render them as-is.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tmdb: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: %s: %d %s", path, resp.StatusCode, string(body))
	}
	return body, nil
}

// Trending returns the daily trending list. mediaType is movie, tv or person.
func (c *Client) Trending(ctx context.Context, mediaType string, page int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	return c.get(ctx, "/trending/"+mediaType+"/day", params)
}

// DiscoverMovies returns popular movies, adult content excluded.
func (c *Client) DiscoverMovies(ctx context.Context, page int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")
	return c.get(ctx, "/discover/movie", params)
}

func (c *Client) MovieDetails(ctx context.Context, movieID int) (json.RawMessage, error) {
	return c.get(ctx, "/movie/"+strconv.Itoa(movieID), nil)
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", "en-US")
	params.Set("page", strconv.Itoa(page))
	return c.get(ctx, "/search/movie", params)
}
