package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client wraps HTTP calls to the cinelist server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new cinelist API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

func (c *Client) get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) put(path string, result any) error {
	return c.do(http.MethodPut, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) delete(path string, result any) error {
	return c.do(http.MethodDelete, path, nil, result)
}

func (c *Client) do(method, path string, body any, result any) error {
	var r io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		r = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	var payload struct {
		Error  string            `json:"error"`
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
		apiErr.Fields = payload.Fields
	}
	return apiErr
}

// API response types (mirror server types)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	Tagline     string  `json:"tagline,omitempty"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Runtime     int     `json:"runtime,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
	Favorite    bool    `json:"favorite"`
	MustWatch   bool    `json:"must_watch"`
}

type MovieListResponse struct {
	Title        string  `json:"title"`
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Movies       []Movie `json:"movies"`
}

type ListResponse struct {
	Items []Movie `json:"items"`
	Total int     `json:"total"`
}

type MembershipResponse struct {
	List    string  `json:"list"`
	MovieID int64   `json:"movie_id"`
	Changed bool    `json:"changed"`
	IDs     []int64 `json:"ids"`
}

type Review struct {
	ID        string    `json:"id"`
	MovieID   int64     `json:"movie_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Rating    float64   `json:"rating"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewsResponse struct {
	MovieID int64    `json:"movie_id"`
	Reviews []Review `json:"reviews"`
	Remote  int      `json:"remote"`
	Session int      `json:"session"`
}

type ReviewRequest struct {
	Author  string  `json:"author"`
	Content string  `json:"content"`
	Rating  float64 `json:"rating"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
	Stats     struct {
		CachedQueries  int `json:"cached_queries"`
		Favorites      int `json:"favorites"`
		MustWatch      int `json:"must_watch"`
		SessionReviews int `json:"session_reviews"`
	} `json:"stats"`
}

type EventResponse struct {
	ID         int64           `json:"id"`
	EventType  string          `json:"event_type"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

type EventsResponse struct {
	Items  []EventResponse `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ListFilter narrows a popular or upcoming listing.
type ListFilter struct {
	Page  int
	Title string
	Genre int
}

func (f ListFilter) query() string {
	q := url.Values{}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Title != "" {
		q.Set("title", f.Title)
	}
	if f.Genre > 0 {
		q.Set("genre", strconv.Itoa(f.Genre))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// API methods

func (c *Client) Popular(f ListFilter) (*MovieListResponse, error) {
	var resp MovieListResponse
	if err := c.get("/api/v1/movies/popular"+f.query(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Upcoming(f ListFilter) (*MovieListResponse, error) {
	var resp MovieListResponse
	if err := c.get("/api/v1/movies/upcoming"+f.query(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Movie(id int64) (*Movie, error) {
	var resp Movie
	if err := c.get(fmt.Sprintf("/api/v1/movies/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Genres() ([]Genre, error) {
	var resp struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.get("/api/v1/genres", &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// List returns the movies on list ("favorites" or "mustwatch").
func (c *Client) List(list string) (*ListResponse, error) {
	var resp ListResponse
	if err := c.get("/api/v1/"+list, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddToList(list string, id int64) (*MembershipResponse, error) {
	var resp MembershipResponse
	if err := c.put(fmt.Sprintf("/api/v1/%s/%d", list, id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RemoveFromList(list string, id int64) (*MembershipResponse, error) {
	var resp MembershipResponse
	if err := c.delete(fmt.Sprintf("/api/v1/%s/%d", list, id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Reviews(movieID int64) (*ReviewsResponse, error) {
	var resp ReviewsResponse
	if err := c.get(fmt.Sprintf("/api/v1/movies/%d/reviews", movieID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitReview(movieID int64, req ReviewRequest) (*Review, error) {
	var resp Review
	if err := c.post(fmt.Sprintf("/api/v1/movies/%d/reviews", movieID), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Events(limit, offset int) (*EventsResponse, error) {
	var resp EventsResponse
	path := fmt.Sprintf("/api/v1/events?limit=%d&offset=%d", limit, offset)
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
