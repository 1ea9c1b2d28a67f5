package llmfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Job is an extraction task with a fixed, ordered set of fields. Each job
// owns one storage table with a column per field.
type Job struct {
	ID        int64     `json:"id"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Fields    []string  `json:"fields"`

	// Stats is only populated by FindJobs.
	Stats *JobStats `json:"stats,omitempty"`
}

// JobStats summarizes the rows stored for a job.
type JobStats struct {
	Rows int `json:"rows"`

	// Filled counts rows whose value holds at least one non-blank string,
	// keyed by field name.
	Filled map[string]int `json:"filled"`
}

// HasField reports whether field was declared on the job.
func (j *Job) HasField(field string) bool {
	for _, f := range j.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ReservedColumn is the primary key column of every job table.
const ReservedColumn = "id"

// ValidateFields returns an error if fields cannot be used to create a job.
// Distinct display names that sanitize to the same column are rejected
// rather than renamed.
func ValidateFields(fields []string) error {
	if len(fields) == 0 {
		return Errorf(EINVALID, "fields array required")
	}
	names := make(map[string]struct{}, len(fields))
	columns := make(map[string]string, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return Errorf(EINVALID, "field names must not be blank")
		}
		if _, ok := names[f]; ok {
			return Errorf(EINVALID, "duplicate field %q", f)
		}
		names[f] = struct{}{}

		col := ColumnName(f)
		if col == ReservedColumn {
			return Errorf(EINVALID, "field %q collides with the reserved %q column", f, ReservedColumn)
		}
		if other, ok := columns[col]; ok {
			return Errorf(EINVALID, "fields %q and %q map to the same column %q", other, f, col)
		}
		columns[col] = f
	}
	return nil
}

// Row is one stored extraction result for a job.
//
// Values holds string, []string or nil (SQL NULL) per field. Fields
// keeps the job's declared order and drives JSON encoding.
type Row struct {
	ID     int64
	Fields []string
	Values map[string]any
}

// MarshalJSON encodes the row as a flat object: {"id": 1, "<field>": value, ...}
// with fields in declared order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	id, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	buf.Write(id)
	for _, f := range r.Fields {
		key, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Values[f])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowFilter represents a filter for FindRows.
type RowFilter struct {
	ID *int64 `json:"id"`
}

// JobService manages jobs and their dynamically created tables.
type JobService interface {
	// CreateJob allocates the next job ID and creates the job's table.
	// Returns EINVALID if the fields fail ValidateFields.
	CreateJob(ctx context.Context, job *Job) error

	// FindJobByID retrieves a job by ID.
	// Returns ENOTFOUND if job does not exist.
	FindJobByID(ctx context.Context, id int64) (*Job, error)

	// FindJobs retrieves all jobs, most recently created first.
	FindJobs(ctx context.Context) ([]*Job, error)

	// DeleteJob drops the job's table and metadata.
	// Reports false if the job does not exist.
	DeleteJob(ctx context.Context, id int64) (bool, error)

	// InsertRow writes the given field values as a new row and returns its ID.
	// Omitted fields are stored as NULL. Returns ENOTFOUND if the job does not
	// exist and EINVALID for fields the job does not declare.
	InsertRow(ctx context.Context, jobID int64, data map[string]any) (int64, error)

	// FindRows returns the job's rows in storage order, or the single row
	// matching filter.ID. A missing job or row yields an empty slice.
	FindRows(ctx context.Context, jobID int64, filter RowFilter) ([]*Row, error)

	// DeleteRow removes one row. Reports false if the job or row does not exist.
	DeleteRow(ctx context.Context, jobID, rowID int64) (bool, error)
}
