// Package reddit fetches a user's recent public activity from Reddit's JSON
// listings.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/redlens/redlens/internal/activity"
)

const (
	DefaultBaseURL   = "https://www.reddit.com"
	DefaultUserAgent = "redlens/1.0 (persona analysis)"
	// PermalinkBase prefixes item permalinks to form source URLs.
	PermalinkBase = "https://reddit.com"

	pageLimit = 100
)

// ErrUserNotFound is returned when the account does not exist or is suspended.
var ErrUserNotFound = errors.New("reddit: user not found")

// PartialError reports listings that failed after the user was found. The
// collection returned alongside it holds whatever was fetched.
type PartialError struct {
	Username string
	Listings []string
	Err      error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("reddit: partial fetch for u/%s (%s): %v", e.Username, strings.Join(e.Listings, ", "), e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// Fetcher retrieves a user's activity.
type Fetcher interface {
	Fetch(ctx context.Context, username string) (activity.Collection, error)
}

// Options configures a Client. Zero values take the defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	// MaxItems caps comments; posts are capped at half of it.
	MaxItems     int
	RequestDelay time.Duration
	HTTPClient   *http.Client
}

// Client is a Fetcher backed by Reddit's public JSON endpoints.
type Client struct {
	baseURL   string
	userAgent string
	maxItems  int
	http      *http.Client
	limiter   *rate.Limiter
	log       zerolog.Logger
}

// NewClient creates a Client.
func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 20
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		maxItems:  opts.MaxItems,
		http:      opts.HTTPClient,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

type aboutResponse struct {
	Data struct {
		Name        string `json:"name"`
		IsSuspended bool   `json:"is_suspended"`
	} `json:"data"`
}

type listingResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string      `json:"kind"`
			Data listingItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingItem struct {
	Body       string  `json:"body"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

type statusError struct {
	Code int
	Path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.Path, e.Code)
}

// Fetch returns up to MaxItems comments and MaxItems/2 posts, newest first.
// A missing account is terminal; a failed listing yields a *PartialError
// together with the items that were fetched.
func (c *Client) Fetch(ctx context.Context, username string) (activity.Collection, error) {
	coll := activity.Collection{Username: username}

	var about aboutResponse
	if err := c.get(ctx, fmt.Sprintf("/user/%s/about.json", url.PathEscape(username)), nil, &about); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return coll, fmt.Errorf("%w: u/%s", ErrUserNotFound, username)
		}
		return coll, fmt.Errorf("reddit: fetch u/%s: %w", username, err)
	}
	if about.Data.IsSuspended {
		return coll, fmt.Errorf("%w: u/%s is suspended", ErrUserNotFound, username)
	}

	var failed []string
	var errs []error

	comments, err := c.listing(ctx, username, "comments", c.maxItems)
	if err != nil {
		failed, errs = append(failed, "comments"), append(errs, err)
	}
	for _, it := range comments {
		coll.Comments = append(coll.Comments, activity.NewComment(it.Body, PermalinkBase+it.Permalink, unixTime(it.CreatedUTC)))
	}

	if n := c.maxItems / 2; n > 0 {
		posts, err := c.listing(ctx, username, "submitted", n)
		if err != nil {
			failed, errs = append(failed, "submitted"), append(errs, err)
		}
		for _, it := range posts {
			coll.Posts = append(coll.Posts, activity.NewPost(it.Title, it.Selftext, PermalinkBase+it.Permalink, unixTime(it.CreatedUTC)))
		}
	}

	c.log.Info().
		Str("stage", "fetch").
		Str("user", username).
		Int("comments", len(coll.Comments)).
		Int("posts", len(coll.Posts)).
		Msg("fetched user activity")

	if len(errs) > 0 {
		perr := &PartialError{Username: username, Listings: failed, Err: errors.Join(errs...)}
		c.log.Warn().Str("stage", "fetch").Err(perr).Msg("partial fetch")
		return coll, perr
	}
	return coll, nil
}

// listing pages through /user/{u}/{kind}.json until limit items are collected.
func (c *Client) listing(ctx context.Context, username, kind string, limit int) ([]listingItem, error) {
	var out []listingItem
	after := ""
	for len(out) < limit {
		q := url.Values{}
		q.Set("sort", "new")
		q.Set("limit", strconv.Itoa(min(limit-len(out), pageLimit)))
		if after != "" {
			q.Set("after", after)
		}

		var resp listingResponse
		if err := c.get(ctx, fmt.Sprintf("/user/%s/%s.json", url.PathEscape(username), kind), q, &resp); err != nil {
			return out, fmt.Errorf("%s: %w", kind, err)
		}
		for _, child := range resp.Data.Children {
			if len(out) == limit {
				break
			}
			out = append(out, child.Data)
		}
		after = resp.Data.After
		if after == "" || len(resp.Data.Children) == 0 {
			break
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &statusError{Code: resp.StatusCode, Path: path}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func unixTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
