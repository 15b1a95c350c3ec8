package composite

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/infra/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/oapi-codegen/runtime"
	"github.com/rs/zerolog"
)

var _ adapter.CompositeAPI = (*Client)(nil)

// Client talks to the composite service REST API.
type Client struct {
	http *resty.Client
	log  *zerolog.Logger
}

func NewClient(cfg config.APIConfig, logger *zerolog.Logger) *Client {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "CompositeClient").Logger()
	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	return &Client{http: r, log: &l}
}

type call struct {
	op     string
	method string
	path   string
	query  map[string]string
	cred   *model.Credential
	body   any
}

// do executes c and decodes a successful JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, cl call, out any) error {
	req := c.http.R().SetContext(ctx)
	if cl.cred.Valid() {
		req.SetAuthToken(cl.cred.AccessToken)
	}
	if cl.body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(cl.body)
	}
	if len(cl.query) > 0 {
		req.SetQueryParams(cl.query)
	}

	start := time.Now()
	resp, err := req.Execute(cl.method, cl.path)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveAPIRequest(cl.op, 0, elapsed)
		c.log.Debug().Err(err).Str("op", cl.op).Str("path", cl.path).Msg("request failed")
		return fmt.Errorf("%s: %w", cl.op, err)
	}
	metrics.ObserveAPIRequest(cl.op, resp.StatusCode(), elapsed)
	c.log.Debug().
		Str("op", cl.op).
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode()).
		Dur("duration", elapsed).
		Msg("composite request")

	if !resp.IsSuccess() {
		return decodeError(resp.StatusCode(), resp.Body())
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

func decodeError(code int, body []byte) error {
	e := &model.APIError{StatusCode: code, Status: http.StatusText(code)}
	if len(body) == 0 || !json.Valid(body) {
		return e
	}
	e.Parsed = true
	var obj struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &obj) == nil {
		e.Detail = detailString(obj.Detail)
	}
	return e
}

// detailString flattens the detail field: plain strings as-is, validation error
// lists as their joined messages, anything else as compact JSON.
func detailString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &list) == nil {
		msgs := make([]string, 0, len(list))
		for _, m := range list {
			if m.Msg != "" {
				msgs = append(msgs, m.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return string(raw)
}

// path fills tmpl with escaped path parameters.
func path(tmpl string, ids ...model.ID) (string, error) {
	args := make([]any, len(ids))
	for i, id := range ids {
		if id == "" {
			return "", fmt.Errorf("%w: empty id", domain.ErrInvalidArgument)
		}
		s, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, string(id))
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
		}
		args[i] = s
	}
	return fmt.Sprintf(tmpl, args...), nil
}

func pageQuery(page, pageSize int) map[string]string {
	if page <= 0 {
		page = 1
	}
	return map[string]string{
		"page":      fmt.Sprint(page),
		"page_size": fmt.Sprint(pageSize),
	}
}

func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	var out model.Health
	if err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"}, &out); err != nil {
		return nil, err
	}
	if out.Status == "" {
		out.Status = "OK"
	}
	return &out, nil
}
