// Package secapi is a client for the sec-api.io filing query and XBRL-to-JSON
// endpoints, plus a polygon-style split history endpoint.
package secapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finstmt/internal/model"
	"github.com/sells-group/finstmt/internal/resilience"
	"github.com/sells-group/finstmt/internal/xbrl"
)

const (
	defaultBaseURL       = "https://api.sec-api.io"
	defaultSplitsBaseURL = "https://api.polygon.io"
	defaultRateLimit     = 10.0
	defaultUserAgent     = "finstmt/1.0"

	// maxErrorBody bounds how much of a failed response is kept for the error.
	maxErrorBody = 512
)

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets the filing API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithSplitsBaseURL sets the split history base URL (for testing).
func WithSplitsBaseURL(u string) Option {
	return func(c *Client) {
		c.splitsBaseURL = strings.TrimRight(u, "/")
	}
}

// WithSplitsAPIKey sets the key sent to the split history endpoint.
func WithSplitsAPIKey(key string) Option {
	return func(c *Client) {
		c.splitsAPIKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRateLimit sets the starting request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = NewAdaptiveLimiter(rps)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// Client talks to the upstream filing and split APIs.
type Client struct {
	apiKey        string
	splitsAPIKey  string
	baseURL       string
	splitsBaseURL string
	userAgent     string
	http          *http.Client
	limiter       *AdaptiveLimiter
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       defaultBaseURL,
		splitsBaseURL: defaultSplitsBaseURL,
		userAgent:     defaultUserAgent,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: NewAdaptiveLimiter(defaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type queryRequest struct {
	Query string      `json:"query"`
	From  string      `json:"from"`
	Size  string      `json:"size"`
	Sort  []sortField `json:"sort"`
}

type sortField map[string]map[string]string

type queryResponse struct {
	Filings []filingJSON `json:"filings"`
}

type filingJSON struct {
	AccessionNo         string `json:"accessionNo"`
	FiledAt             string `json:"filedAt"`
	FormType            string `json:"formType"`
	PeriodOfReport      string `json:"periodOfReport"`
	CIK                 string `json:"cik"`
	LinkToFilingDetails string `json:"linkToFilingDetails"`
	LinkToHTML          string `json:"linkToHtml"`
}

// SearchFilings returns up to limit filings of formType, newest first. When
// cik is set it is used instead of the ticker.
func (c *Client) SearchFilings(ctx context.Context, ticker, formType string, limit int, cik string) ([]model.Filing, error) {
	payload := queryRequest{
		Query: buildQuery(ticker, formType, cik),
		From:  "0",
		Size:  fmt.Sprintf("%d", max(limit, 1)),
		Sort:  []sortField{{"filedAt": {"order": "desc"}}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "secapi: marshal query")
	}

	reqURL := c.baseURL + "/?token=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "secapi: create query request")
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(ctx, req, "query filings")
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, resilience.NewTerminalError(eris.Wrap(err, "secapi: decode filings"), 0)
	}

	filings := make([]model.Filing, 0, len(resp.Filings))
	for _, f := range resp.Filings {
		filedAt, ok := parseTime(f.FiledAt)
		if !ok {
			zap.L().Debug("secapi: skipping filing with bad filedAt",
				zap.String("accession", f.AccessionNo),
				zap.String("filed_at", f.FiledAt),
			)
			continue
		}
		link := f.LinkToFilingDetails
		if link == "" {
			link = f.LinkToHTML
		}
		filings = append(filings, model.Filing{
			AccessionNo:    f.AccessionNo,
			FiledAt:        filedAt,
			FormType:       f.FormType,
			PeriodOfReport: f.PeriodOfReport,
			CIK:            f.CIK,
			URL:            link,
		})
	}
	return filings, nil
}

func buildQuery(ticker, formType, cik string) string {
	subject := "ticker:" + strings.ToUpper(ticker)
	if cik != "" {
		subject = "cik:" + strings.TrimLeft(cik, "0")
	}
	return fmt.Sprintf("%s AND formType:%q", subject, formType)
}

// FetchXBRL returns the XBRL-to-JSON document of one filing.
func (c *Client) FetchXBRL(ctx context.Context, accessionNo string) (xbrl.Document, error) {
	q := url.Values{}
	q.Set("accession-no", accessionNo)
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/xbrl-to-json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "secapi: create xbrl request")
	}

	data, err := c.do(ctx, req, "fetch xbrl")
	if err != nil {
		return nil, err
	}

	doc, err := xbrl.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, resilience.NewTerminalError(eris.Wrapf(err, "secapi: decode xbrl %s", accessionNo), 0)
	}
	return doc, nil
}

type splitsResponse struct {
	Results []splitJSON `json:"results"`
}

type splitJSON struct {
	ExecutionDate string  `json:"execution_date"`
	SplitFrom     float64 `json:"split_from"`
	SplitTo       float64 `json:"split_to"`
}

// FetchSplits returns the ticker's split history. Without a splits API key
// there is nothing to ask and the history is empty.
func (c *Client) FetchSplits(ctx context.Context, ticker string) ([]model.SplitEvent, error) {
	if c.splitsAPIKey == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("ticker", strings.ToUpper(ticker))
	q.Set("limit", "1000")
	q.Set("apiKey", c.splitsAPIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.splitsBaseURL+"/v3/reference/splits?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "secapi: create splits request")
	}

	data, err := c.do(ctx, req, "fetch splits")
	if err != nil {
		return nil, err
	}

	var resp splitsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, resilience.NewTerminalError(eris.Wrap(err, "secapi: decode splits"), 0)
	}

	splits := make([]model.SplitEvent, 0, len(resp.Results))
	for _, s := range resp.Results {
		d, err := time.Parse(time.DateOnly, s.ExecutionDate)
		if err != nil || s.SplitFrom <= 0 || s.SplitTo <= 0 {
			continue
		}
		splits = append(splits, model.SplitEvent{ExecutionDate: d, SplitFrom: s.SplitFrom, SplitTo: s.SplitTo})
	}
	return splits, nil
}

// do sends req under the rate limiter and returns the body of a 2xx response.
// Failures come back as a TransientError or a TerminalError.
func (c *Client) do(ctx context.Context, req *http.Request, op string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "secapi: rate limiter wait")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		wrapped := eris.Wrapf(err, "secapi: %s", op)
		if resilience.IsTransient(err) {
			return nil, resilience.NewTransientError(wrapped, 0)
		}
		return nil, resilience.NewTerminalError(wrapped, 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrapf(err, "secapi: %s: read body", op), resp.StatusCode)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.OnRateLimit()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, resilience.StatusError(resp.StatusCode, fmt.Sprintf("secapi: %s (%s)", op, msg))
	}

	c.limiter.OnSuccess()
	return data, nil
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
