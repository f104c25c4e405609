// Package timesheet pulls staff timesheets from the rostering API and appends
// one row per timesheet item to the sessions sheet.
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrStatus is returned when the API answers with a non-2xx status.
var ErrStatus = errors.New("unexpected API status")

const (
	DefaultPageSize = 20
	DefaultMaxPages = 500
	DefaultTimeout  = 30 * time.Second
	DefaultSheet    = "HM-Sessions"

	timesheetsPath = "/api/v3/timesheets"
)

// Config holds the API connection and the import window.
type Config struct {
	BaseURL   string
	AccountID string
	APIKey    string
	PageSize  int
	From      time.Time
	To        time.Time
	MaxPages  int
	Timeout   time.Duration
	// Location is the zone dates and times are rendered in.
	Location *time.Location
	Sheet    string
}

// MonthRange returns the import window of a calendar month: midnight UTC on
// the first day to midnight UTC on the last day.
func MonthRange(year int, month time.Month) (from, to time.Time) {
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, -1)
	return from, to
}

// WithDefaults fills unset optional fields.
func (c Config) WithDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Sheet == "" {
		c.Sheet = DefaultSheet
	}
	return c
}

// Validate reports the first setting that prevents an import.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("timesheet base_url is required")
	case c.AccountID == "":
		return errors.New("timesheet account_id is required")
	case c.APIKey == "":
		return errors.New("timesheet api_key is required")
	case c.From.IsZero() || c.To.IsZero():
		return errors.New("timesheet date range is required")
	case c.To.Before(c.From):
		return fmt.Errorf("timesheet date range ends %s before it starts %s", c.To.Format(time.DateOnly), c.From.Format(time.DateOnly))
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("timesheet base_url: %w", err)
	}
	return nil
}

// Item is one payable line of a timesheet.
type Item struct {
	PayableID    string
	PayableType  string
	PayableName  string
	PayableUnit  string
	StartAt      string
	FinishAt     string
	BreakMinutes float64
	Amount       float64
}

// Timesheet is one staff member's sheet for a day.
type Timesheet struct {
	StaffID   string
	Date      string
	ClientIDs []string
	Status    string
	Items     []Item
}

// Page is one decoded response.
type Page struct {
	Timesheets []Timesheet
	// Metadata reports whether the response carried pagination metadata.
	Metadata    bool
	CurrentPage int
	TotalPages  int
}

// Last reports whether the metadata marks this page as the final one.
func (p *Page) Last() bool {
	return p.Metadata && p.TotalPages > 0 && p.CurrentPage >= p.TotalPages
}

// Client calls the timesheet endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient returns a client for cfg.
func NewClient(cfg Config) *Client {
	cfg = cfg.WithDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// PageURL builds the request URL of page.
func (c *Client) PageURL(page int) string {
	q := url.Values{}
	q.Set("from", c.cfg.From.UTC().Format(time.RFC3339))
	q.Set("to", c.cfg.To.UTC().Format(time.RFC3339))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.cfg.PageSize))
	q.Set("include_metadata", "true")
	return strings.TrimRight(c.cfg.BaseURL, "/") + timesheetsPath + "?" + q.Encode()
}

// FetchPage retrieves and decodes one page of timesheets. Pages start at 1.
func (c *Client) FetchPage(ctx context.Context, page int) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(page), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountID, c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read page %d: %w", page, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	return ParsePage(body)
}

// ParsePage decodes a timesheets response. Pagination counters are accepted
// as numbers or numeric strings.
func ParsePage(body []byte) (*Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not valid JSON")
	}
	res := gjson.ParseBytes(body)
	sheets := res.Get("timesheets")
	if sheets.Exists() && !sheets.IsArray() {
		return nil, errors.New("timesheets is not an array")
	}

	page := &Page{}
	for _, ts := range sheets.Array() {
		t := Timesheet{
			StaffID: ts.Get("staff_id").String(),
			Date:    ts.Get("date").String(),
			Status:  ts.Get("status").String(),
		}
		for _, id := range ts.Get("client_ids").Array() {
			t.ClientIDs = append(t.ClientIDs, id.String())
		}
		for _, it := range ts.Get("items").Array() {
			t.Items = append(t.Items, Item{
				PayableID:    it.Get("payable_id").String(),
				PayableType:  it.Get("payable_type").String(),
				PayableName:  it.Get("payable_name").String(),
				PayableUnit:  it.Get("payable_unit").String(),
				StartAt:      it.Get("start_at").String(),
				FinishAt:     it.Get("finish_at").String(),
				BreakMinutes: it.Get("break_minutes").Float(),
				Amount:       it.Get("amount").Float(),
			})
		}
		page.Timesheets = append(page.Timesheets, t)
	}

	if meta := res.Get("_metadata"); meta.Exists() {
		page.Metadata = true
		page.CurrentPage = int(meta.Get("current_page").Int())
		page.TotalPages = int(meta.Get("total_pages").Int())
	}
	return page, nil
}
