package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"github.com/AzielCF/az-relay/core/config"
)

// Client talks to the Messenger Graph API with the page access token.
type Client struct {
	http      *fasthttp.Client
	baseURL   string
	version   string
	pageToken string
	timeout   time.Duration
}

func NewClient(cfg config.MessengerConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "az-relay",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		baseURL:   strings.TrimRight(cfg.GraphAPIBaseURL, "/"),
		version:   strings.Trim(cfg.GraphAPIVersion, "/"),
		pageToken: cfg.PageToken,
		timeout:   timeout,
	}
}

// GraphError is the error object the Graph API returns on failures.
type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
	Status    int    `json:"-"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api %d: %s (type=%s code=%d trace=%s)", e.Status, e.Message, e.Type, e.Code, e.FBTraceID)
}

func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("access_token", c.pageToken)
	return fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.version, strings.TrimLeft(path, "/"), query.Encode())
}

// do sends body (when not nil) as JSON and decodes the response into out.
func (c *Client) do(ctx context.Context, method, uri string, body, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("graph api request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		var envelope struct {
			Error *GraphError `json:"error"`
		}
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil || envelope.Error == nil {
			return &GraphError{Status: status, Message: strings.TrimSpace(string(resp.Body()))}
		}
		envelope.Error.Status = status
		return envelope.Error
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to decode graph api response: %w", err)
		}
	}
	logrus.Debugf("[MESSENGER] %s %s -> %d", method, strings.SplitN(uri, "?", 2)[0], status)
	return nil
}
