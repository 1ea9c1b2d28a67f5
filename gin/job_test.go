package gin_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fwojciec/llmfetch"
	llmgin "github.com/fwojciec/llmfetch/gin"
	"github.com/fwojciec/llmfetch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_JobIndex(t *testing.T) {
	t.Parallel()

	t.Run("lists jobs", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			FindJobsFn: func(context.Context) ([]*llmfetch.Job, error) {
				return []*llmfetch.Job{testJob}, nil
			},
		}

		w := do(t, s, http.MethodGet, "/jobs", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":7,"createdAt":"2025-03-04T05:06:07Z","fields":["title","price"]}]`, w.Body.String())
	})

	t.Run("renders an empty list as an array", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			FindJobsFn: func(context.Context) ([]*llmfetch.Job, error) { return nil, nil },
		}

		w := do(t, s, http.MethodGet, "/jobs", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("hides internal error details", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			FindJobsFn: func(context.Context) ([]*llmfetch.Job, error) {
				return nil, errors.New("disk I/O error")
			},
		}

		w := do(t, s, http.MethodGet, "/jobs", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal error.", errorBody(t, w))
	})
}

func TestServer_JobCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates a job and returns its id", func(t *testing.T) {
		t.Parallel()

		var created *llmfetch.Job
		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			CreateJobFn: func(_ context.Context, job *llmfetch.Job) error {
				created = job
				job.ID = 12
				return nil
			},
		}

		w := do(t, s, http.MethodPost, "/jobs", `{"fields":["title","price"],"url":"https://example.com"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":12}`, w.Body.String())
		require.NotNil(t, created)
		assert.Equal(t, []string{"title", "price"}, created.Fields)
		assert.Equal(t, "https://example.com", created.SourceURL)
	})

	t.Run("requires fields", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{}

		for _, body := range []string{"", `{}`, `{"fields":[]}`} {
			w := do(t, s, http.MethodPost, "/jobs", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
			assert.Equal(t, "fields array required", errorBody(t, w))
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{}

		w := do(t, s, http.MethodPost, "/jobs", `{"fields":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("passes validation errors through", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			CreateJobFn: func(context.Context, *llmfetch.Job) error {
				return llmfetch.Errorf(llmfetch.EINVALID, `duplicate field "a"`)
			},
		}

		w := do(t, s, http.MethodPost, "/jobs", `{"fields":["a","a"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `duplicate field "a"`, errorBody(t, w))
	})
}

func TestServer_JobRows(t *testing.T) {
	t.Parallel()

	t.Run("returns rows as flat objects in field order", func(t *testing.T) {
		t.Parallel()

		svc := jobService()
		svc.FindRowsFn = func(_ context.Context, jobID int64, filter llmfetch.RowFilter) ([]*llmfetch.Row, error) {
			assert.Nil(t, filter.ID)
			return []*llmfetch.Row{{
				ID:     1,
				Fields: testJob.Fields,
				Values: map[string]any{"title": []string{"Smart Watch"}, "price": nil},
			}}, nil
		}
		s := llmgin.NewServer()
		s.JobService = svc

		w := do(t, s, http.MethodGet, "/jobs/7", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `[{"id":1,"title":["Smart Watch"],"price":null}]`, w.Body.String())
	})

	t.Run("returns an empty array for a job without rows", func(t *testing.T) {
		t.Parallel()

		svc := jobService()
		svc.FindRowsFn = func(context.Context, int64, llmfetch.RowFilter) ([]*llmfetch.Row, error) { return nil, nil }
		s := llmgin.NewServer()
		s.JobService = svc

		w := do(t, s, http.MethodGet, "/jobs/7", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", w.Body.String())
	})

	t.Run("returns 404 for a missing job", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = jobService()

		w := do(t, s, http.MethodGet, "/jobs/8", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 for a malformed id", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = jobService()

		for _, path := range []string{"/jobs/abc", "/jobs/0", "/jobs/-1"} {
			w := do(t, s, http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.Equal(t, "invalid id", errorBody(t, w))
		}
	})
}

func TestServer_JobView(t *testing.T) {
	t.Parallel()

	s := llmgin.NewServer()
	s.JobService = jobService()

	w := do(t, s, http.MethodGet, "/jobs/7/meta", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"createdAt":"2025-03-04T05:06:07Z","fields":["title","price"]}`, w.Body.String())
}

func TestServer_JobDelete(t *testing.T) {
	t.Parallel()

	newServer := func() *llmgin.Server {
		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			DeleteJobFn: func(_ context.Context, id int64) (bool, error) { return id == 7, nil },
		}
		return s
	}

	t.Run("deletes an existing job", func(t *testing.T) {
		t.Parallel()

		w := do(t, newServer(), http.MethodDelete, "/jobs/7", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("returns 404 for a missing job", func(t *testing.T) {
		t.Parallel()

		w := do(t, newServer(), http.MethodDelete, "/jobs/8", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "not found", errorBody(t, w))
	})
}

func TestServer_JobScrape(t *testing.T) {
	t.Parallel()

	t.Run("returns the row id and results", func(t *testing.T) {
		t.Parallel()

		var got llmfetch.ScrapeRequest
		s := llmgin.NewServer()
		s.Scraper = &mock.Scraper{
			ScrapeFn: func(_ context.Context, req llmfetch.ScrapeRequest) (*llmfetch.ScrapeResult, error) {
				got = req
				return &llmfetch.ScrapeResult{
					RowID:   3,
					Results: map[string][]string{"title": {"Smart Watch"}, "price": nil},
				}, nil
			},
		}

		w := do(t, s, http.MethodPost, "/jobs/7/scrape", `{"url":"https://example.com","fields":["title","price"]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"rowId":3,"results":{"title":["Smart Watch"],"price":null}}`, w.Body.String())
		assert.Equal(t, int64(7), got.JobID)
		assert.Equal(t, "https://example.com", got.URL)
		assert.Equal(t, []string{"title", "price"}, got.Fields)
	})

	t.Run("accepts an empty body", func(t *testing.T) {
		t.Parallel()

		var got llmfetch.ScrapeRequest
		s := llmgin.NewServer()
		s.Scraper = &mock.Scraper{
			ScrapeFn: func(_ context.Context, req llmfetch.ScrapeRequest) (*llmfetch.ScrapeResult, error) {
				got = req
				return &llmfetch.ScrapeResult{RowID: 1, Results: map[string][]string{}}, nil
			},
		}

		w := do(t, s, http.MethodPost, "/jobs/7/scrape", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), got.JobID)
		assert.Empty(t, got.URL)
		assert.Empty(t, got.Fields)
	})

	t.Run("maps scraper errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			err    error
			status int
			msg    string
		}{
			{llmfetch.Errorf(llmfetch.ENOTFOUND, "job 7 not found"), http.StatusNotFound, "job 7 not found"},
			{llmfetch.Errorf(llmfetch.EINVALID, `field "x" is not declared on job 7`), http.StatusBadRequest, `field "x" is not declared on job 7`},
			{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "scraping failed"},
		}

		for _, tt := range tests {
			s := llmgin.NewServer()
			s.Scraper = &mock.Scraper{
				ScrapeFn: func(context.Context, llmfetch.ScrapeRequest) (*llmfetch.ScrapeResult, error) {
					return nil, tt.err
				},
			}

			w := do(t, s, http.MethodPost, "/jobs/7/scrape", `{}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, errorBody(t, w))
		}
	})
}

func TestServer_Rows(t *testing.T) {
	t.Parallel()

	t.Run("returns one row", func(t *testing.T) {
		t.Parallel()

		svc := &mock.JobService{
			FindRowsFn: func(_ context.Context, jobID int64, filter llmfetch.RowFilter) ([]*llmfetch.Row, error) {
				require.NotNil(t, filter.ID)
				if *filter.ID != 2 {
					return nil, nil
				}
				return []*llmfetch.Row{{ID: 2, Fields: []string{"title"}, Values: map[string]any{"title": "x"}}}, nil
			},
		}
		s := llmgin.NewServer()
		s.JobService = svc

		w := do(t, s, http.MethodGet, "/jobs/7/rows/2", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `{"id":2,"title":"x"}`, w.Body.String())

		w = do(t, s, http.MethodGet, "/jobs/7/rows/3", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deletes one row", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{
			DeleteRowFn: func(_ context.Context, jobID, rowID int64) (bool, error) {
				return jobID == 7 && rowID == 2, nil
			},
		}

		w := do(t, s, http.MethodDelete, "/jobs/7/rows/2", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(t, s, http.MethodDelete, "/jobs/7/rows/9", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects a malformed row id", func(t *testing.T) {
		t.Parallel()

		s := llmgin.NewServer()
		s.JobService = &mock.JobService{}

		w := do(t, s, http.MethodGet, "/jobs/7/rows/x", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid rowId", errorBody(t, w))
	})
}
