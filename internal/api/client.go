// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-cleanhttp"
	jsoniter "github.com/json-iterator/go"
)

// DefaultBaseURL is used when neither --api, LIBCTL_API_BASE_URL nor the
// config file name one.
const DefaultBaseURL = "http://localhost:3000/api"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the pooled cleanhttp client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds each request. Zero leaves the client's timeout alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) ListBooks(ctx context.Context, args ListBooksArgs) (Envelope[[]Book], error) {
	q, err := query.Values(args.Normalize())
	if err != nil {
		return Envelope[[]Book]{}, fmt.Errorf("failed to encode list arguments: %w", err)
	}
	return send[[]Book](ctx, c, http.MethodGet, "books", q, nil)
}

func (c *Client) GetBook(ctx context.Context, id string) (Envelope[Book], error) {
	if id == "" {
		return Envelope[Book]{}, ErrMissingID
	}
	return send[Book](ctx, c, http.MethodGet, "books/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateBook(ctx context.Context, in BookInput) (Envelope[Book], error) {
	return send[Book](ctx, c, http.MethodPost, "books", nil, in)
}

func (c *Client) UpdateBook(ctx context.Context, args UpdateBookArgs) (Envelope[Book], error) {
	if args.ID == "" {
		return Envelope[Book]{}, ErrMissingID
	}
	return send[Book](ctx, c, http.MethodPut, "books/"+url.PathEscape(args.ID), nil, args.Changes)
}

func (c *Client) DeleteBook(ctx context.Context, id string) (Envelope[any], error) {
	if id == "" {
		return Envelope[any]{}, ErrMissingID
	}
	return send[any](ctx, c, http.MethodDelete, "books/"+url.PathEscape(id), nil, nil)
}

func (c *Client) BorrowBook(ctx context.Context, in BorrowInput) (Envelope[BorrowRecord], error) {
	return send[BorrowRecord](ctx, c, http.MethodPost, "borrow", nil, in)
}

// BorrowSummary takes an empty argument so it has the same shape as the other
// reads.
func (c *Client) BorrowSummary(ctx context.Context, _ struct{}) (Envelope[[]BorrowSummaryItem], error) {
	return send[[]BorrowSummaryItem](ctx, c, http.MethodGet, "borrow", nil, nil)
}

// send issues one request and decodes the envelope. Non-2xx responses become
// *RequestError and transport failures *NetworkError.
func send[T any](
	ctx context.Context,
	c *Client,
	method string,
	path string,
	q url.Values,
	body any,
) (Envelope[T], error) {
	var env Envelope[T]

	u := c.baseURL.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return env, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return env, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Debugf("%s %s failed", method, u)
		return env, &NetworkError{Method: method, Path: "/" + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, &NetworkError{Method: method, Path: "/" + path, Err: err}
	}

	log.WithFields(log.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debugf("%s %s", method, u)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return env, newRequestError(method, "/"+path, resp.StatusCode, raw)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return env, fmt.Errorf("%s /%s: empty body: %w", method, path, ErrMalformedEnvelope)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("%s /%s: %w: %v", method, path, ErrMalformedEnvelope, err)
	}

	return env, nil
}
