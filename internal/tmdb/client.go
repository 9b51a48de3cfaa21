package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.themoviedb.org"

// ErrNoGuestSession is returned by AddReview when no guest session is configured.
var ErrNoGuestSession = errors.New("guest session not configured")

// RequestObserver receives one call per completed HTTP exchange.
// status is 0 when the request failed before a response arrived.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, d time.Duration)
}

// Client is a TMDB API client. It keeps no state between calls: no caching
// and no retries.
type Client struct {
	apiKey       string
	baseURL      string
	guestSession string
	httpClient   *http.Client
	limiter      *rate.Limiter
	observer     RequestObserver
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outbound requests to perSecond, with bursts of one.
// A non-positive value disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithGuestSession sets the guest session used for rating submissions.
func WithGuestSession(id string) Option {
	return func(c *Client) {
		c.guestSession = id
	}
}

// WithObserver reports request timings to o.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Popular fetches a page of currently popular movies.
func (c *Client) Popular(ctx context.Context, page int) (*MoviePage, error) {
	var p MoviePage
	if err := c.get(ctx, "popular", "/3/movie/popular", pageQuery(page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upcoming fetches a page of movies about to be released.
func (c *Client) Upcoming(ctx context.Context, page int) (*MoviePage, error) {
	var p MoviePage
	if err := c.get(ctx, "upcoming", "/3/movie/upcoming", pageQuery(page), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetMovie fetches movie metadata by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	var movie Movie
	path := fmt.Sprintf("/3/movie/%d", tmdbID)
	if err := c.get(ctx, "movie", path, nil, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Reviews fetches a page of reviews for a movie.
func (c *Client) Reviews(ctx context.Context, tmdbID int64, page int) (*ReviewPage, error) {
	var raw reviewPageResult
	path := fmt.Sprintf("/3/movie/%d/reviews", tmdbID)
	if err := c.get(ctx, "reviews", path, pageQuery(page), &raw); err != nil {
		return nil, err
	}
	if raw.ID == 0 {
		raw.ID = tmdbID
	}
	return raw.toReviewPage(), nil
}

// Genres fetches the list of movie genres.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var resp genreList
	if err := c.get(ctx, "genres", "/3/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// AddReview submits the review's rating for its movie. TMDB stores one
// rating per guest session and movie; the review text stays with the caller.
func (c *Client) AddReview(ctx context.Context, r Review) error {
	if c.guestSession == "" {
		return ErrNoGuestSession
	}
	body, err := json.Marshal(map[string]float64{"value": r.Rating})
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}
	q := url.Values{}
	q.Set("guest_session_id", c.guestSession)
	path := fmt.Sprintf("/3/movie/%d/rating", r.MovieID)

	var status statusBody
	return c.do(ctx, "rating", http.MethodPost, path, q, bytes.NewReader(body), &status)
}

func pageQuery(page int) url.Values {
	if page <= 0 {
		return nil
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	return c.do(ctx, endpoint, http.MethodGet, path, q, nil, out)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, q url.Values, body io.Reader, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json;charset=utf-8")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteFetchError{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	if rec, ok := out.(record); ok {
		if err := rec.validate(); err != nil {
			return &RemoteFetchError{Status: resp.StatusCode, Message: "decode response: " + err.Error()}
		}
	}
	return nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, time.Since(start))
	}
}

// remoteError builds a RemoteFetchError from a non-2xx response, preferring
// TMDB's own status_message over the HTTP status text.
func remoteError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var sb statusBody
	if err := json.Unmarshal(data, &sb); err == nil && sb.StatusMessage != "" {
		msg = sb.StatusMessage
	}
	return &RemoteFetchError{Status: resp.StatusCode, Message: msg}
}
