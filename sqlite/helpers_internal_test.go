package sqlite

import (
	"testing"
	"time"

	"github.com/fwojciec/llmfetch"
	"github.com/stretchr/testify/assert"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	t.Run("quotes sanitized identifiers", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, `"f_1st_place"`, quoteIdent(llmfetch.ColumnName("1st place")))
	})

	t.Run("panics on unsanitized identifiers", func(t *testing.T) {
		t.Parallel()

		for _, ident := range []string{"", "1st", `x" TEXT); DROP TABLE jobs; --`, "Title", "a b"} {
			assert.Panics(t, func() { quoteIdent(ident) }, "ident %q", ident)
		}
	})
}

func TestTableName(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	name := tableName(12, ts)

	assert.Equal(t, "job_12_2026_03_04_05_06_07", name)
	assert.NotPanics(t, func() { quoteIdent(name) })
}
