package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/llmfetch"
	"github.com/go-resty/resty/v2"
)

// DefaultClientTimeout bounds each API request.
const DefaultClientTimeout = 10 * time.Second

// Client reads jobs and rows from a running llmfetch API server.
type Client struct {
	resty *resty.Client
}

// apiError is the error body returned by the API.
type apiError struct {
	Error string `json:"error"`
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(DefaultClientTimeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)
	return &Client{resty: r}
}

// FindJobs lists all jobs with their stats.
func (c *Client) FindJobs(ctx context.Context) ([]*llmfetch.Job, error) {
	var jobs []*llmfetch.Job
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(&jobs).
		SetError(&apiError{}).
		Get("/jobs")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindJobByID returns the metadata of one job.
func (c *Client) FindJobByID(ctx context.Context, id int64) (*llmfetch.Job, error) {
	var job llmfetch.Job
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&job).
		SetError(&apiError{}).
		Get("/jobs/{id}/meta")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &job, nil
}

// FindRows returns the rows of a job in id order, with values ordered by
// the job's declared fields.
func (c *Client) FindRows(ctx context.Context, id int64) ([]*llmfetch.Row, error) {
	job, err := c.FindJobByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var raw []map[string]json.RawMessage
	resp, err := c.resty.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetResult(&raw).
		SetError(&apiError{}).
		Get("/jobs/{id}")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	rows := make([]*llmfetch.Row, 0, len(raw))
	for _, obj := range raw {
		row, err := decodeRow(job.Fields, obj)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(fields []string, obj map[string]json.RawMessage) (*llmfetch.Row, error) {
	row := &llmfetch.Row{Fields: fields, Values: make(map[string]any, len(fields))}
	if err := json.Unmarshal(obj[llmfetch.ReservedColumn], &row.ID); err != nil {
		return nil, fmt.Errorf("decode row id: %w", err)
	}
	for _, f := range fields {
		v, ok := obj[f]
		if !ok || string(v) == "null" {
			row.Values[f] = nil
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			row.Values[f] = list
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("decode field %q: %w", f, err)
		}
		row.Values[f] = s
	}
	return row, nil
}

// checkResponse converts transport failures and API error bodies into
// application errors.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}

	msg := resp.Status()
	if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
		msg = e.Error
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return llmfetch.Errorf(llmfetch.EINVALID, "%s", msg)
	case http.StatusNotFound:
		return llmfetch.Errorf(llmfetch.ENOTFOUND, "%s", msg)
	case http.StatusConflict:
		return llmfetch.Errorf(llmfetch.ECONFLICT, "%s", msg)
	default:
		return llmfetch.Errorf(llmfetch.EINTERNAL, "api error: %s", msg)
	}
}
