// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrMalformedEnvelope = errors.New("malformed response envelope")
	ErrMissingID         = errors.New("book id is required")
)

// RequestError is a non-2xx response. Body keeps the raw bytes; Message is the
// service's "message" field when the body is JSON.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Message    string
}

func newRequestError(method, path string, status int, body []byte) *RequestError {
	re := &RequestError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
	}
	if gjson.ValidBytes(body) {
		// The service uses "message"; some error middlewares use "error".
		doc := gjson.ParseBytes(body)
		for _, key := range []string{"message", "error.message", "error"} {
			if v := doc.Get(key); v.Exists() && v.Type == gjson.String {
				re.Message = v.String()
				break
			}
		}
	}
	return re
}

// Unstructured reports whether the body was not JSON.
func (e *RequestError) Unstructured() bool {
	return !gjson.ValidBytes(e.Body)
}

// Text is what a user gets shown: the service message, the raw body when it
// wasn't JSON, or the HTTP status text.
func (e *RequestError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	if raw := strings.TrimSpace(string(e.Body)); raw != "" {
		return raw
	}
	return http.StatusText(e.StatusCode)
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Text())
}

// NetworkError is returned when no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Describe renders err for inline or notification display. Request and
// network errors are shown the same way.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var re *RequestError
	if errors.As(err, &re) {
		return fmt.Sprintf("%s (HTTP %d)", re.Text(), re.StatusCode)
	}

	var ne *NetworkError
	if errors.As(err, &ne) {
		return fmt.Sprintf("cannot reach the library service: %v", ne.Err)
	}

	return err.Error()
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
