package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/process"
)

// APIError is a non-2xx response from the inventory API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// MoveRequest is the body of POST /movements
type MoveRequest struct {
	SerialNumber   string  `json:"serialNumber"`
	FromProcess    string  `json:"fromProcess"`
	ToProcess      string  `json:"toProcess"`
	Location       string  `json:"location"`
	Operator       *string `json:"operator,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Quality        *string `json:"quality,omitempty"`
	DocumentNumber *string `json:"documentNumber,omitempty"`
}

// MoveResult is the accepted movement and the sari it updated
type MoveResult struct {
	Movement models.Movement `json:"movement"`
	Sari     models.Sari     `json:"sari"`
}

// Client talks to the /api/v1 routes
type Client struct {
	http *resty.Client
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080/api/v1.
// token, when set, is sent as a bearer token on every request.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		r.SetAuthToken(token)
	}
	return &Client{http: r}
}

func do[T any](ctx context.Context, req *resty.Request, method, path string) (T, error) {
	var out envelope[T]
	var apiErr errorEnvelope
	resp, err := req.SetContext(ctx).SetResult(&out).SetError(&apiErr).Execute(method, path)
	if err != nil {
		return out.Data, err
	}
	if resp.IsError() {
		return out.Data, &APIError{Status: resp.StatusCode(), Code: apiErr.Error.Code, Message: apiErr.Error.Message}
	}
	return out.Data, nil
}

// Health returns the liveness message
func (c *Client) Health(ctx context.Context) (string, error) {
	var out envelope[any]
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/health")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", &APIError{Status: resp.StatusCode()}
	}
	return out.Message, nil
}

// LiveStatus lists saris with their process flow, optionally narrowed by stage and search text
func (c *Client) LiveStatus(ctx context.Context, stage, search string, limit int) ([]process.LiveStatus, error) {
	req := c.http.R()
	if stage != "" {
		req.SetQueryParam("process", stage)
	}
	if search != "" {
		req.SetQueryParam("search", search)
	}
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprint(limit))
	}
	return do[[]process.LiveStatus](ctx, req, http.MethodGet, "/process/live-status")
}

// SerialFlow returns the detailed flow of one serial number
func (c *Client) SerialFlow(ctx context.Context, serial string) (process.SerialFlow, error) {
	req := c.http.R().SetPathParam("serial", serial)
	return do[process.SerialFlow](ctx, req, http.MethodGet, "/process/serial/{serial}")
}

// Move records a movement
func (c *Client) Move(ctx context.Context, move MoveRequest) (MoveResult, error) {
	return do[MoveResult](ctx, c.http.R().SetBody(move), http.MethodPost, "/movements")
}
