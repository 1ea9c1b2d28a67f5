package extract_test

import (
	"context"
	"testing"

	"github.com/fwojciec/llmfetch"
	"github.com/fwojciec/llmfetch/extract"
	"github.com/fwojciec/llmfetch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Parallel()

	counting := func(calls *int, err error) *mock.Generator {
		return &mock.Generator{
			CompleteFn: func(_ context.Context, prompt string, _ llmfetch.GenerateParams) (string, error) {
				*calls++
				if err != nil {
					return "", err
				}
				return "answer to " + prompt, nil
			},
		}
	}

	t.Run("answers repeated requests from memory", func(t *testing.T) {
		t.Parallel()

		var calls int
		gen := extract.Cache(counting(&calls, nil))
		params := llmfetch.GenerateParams{TopK: 1, TopP: 1, Seed: 42}

		a, err := gen.Complete(context.Background(), "p", params)
		require.NoError(t, err)
		b, err := gen.Complete(context.Background(), "p", params)
		require.NoError(t, err)

		assert.Equal(t, "answer to p", a)
		assert.Equal(t, a, b)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, gen.Len())
	})

	t.Run("keys on prompt and params", func(t *testing.T) {
		t.Parallel()

		var calls int
		gen := extract.Cache(counting(&calls, nil))

		_, _ = gen.Complete(context.Background(), "p", llmfetch.GenerateParams{Seed: 1})
		_, _ = gen.Complete(context.Background(), "p", llmfetch.GenerateParams{Seed: 2})
		_, _ = gen.Complete(context.Background(), "q", llmfetch.GenerateParams{Seed: 1})
		_, _ = gen.Complete(context.Background(), "p", llmfetch.GenerateParams{Seed: 1, Stop: []string{"\n"}})

		assert.Equal(t, 4, calls)
		assert.Equal(t, 4, gen.Len())
	})

	t.Run("does not cache errors", func(t *testing.T) {
		t.Parallel()

		var calls int
		gen := extract.Cache(counting(&calls, llmfetch.Errorf(llmfetch.EINTERNAL, "boom")))

		_, err := gen.Complete(context.Background(), "p", llmfetch.GenerateParams{})
		require.Error(t, err)
		_, err = gen.Complete(context.Background(), "p", llmfetch.GenerateParams{})
		require.Error(t, err)

		assert.Equal(t, 2, calls)
		assert.Equal(t, 0, gen.Len())
	})

	t.Run("evicts the oldest response when full", func(t *testing.T) {
		t.Parallel()

		var calls int
		gen := extract.CacheSize(counting(&calls, nil), 2)
		ctx := context.Background()
		params := llmfetch.GenerateParams{}

		for _, p := range []string{"a", "b", "c"} {
			_, err := gen.Complete(ctx, p, params)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, gen.Len())

		// "b" and "c" are still cached; "a" was evicted.
		_, err := gen.Complete(ctx, "c", params)
		require.NoError(t, err)
		_, err = gen.Complete(ctx, "b", params)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)

		_, err = gen.Complete(ctx, "a", params)
		require.NoError(t, err)
		assert.Equal(t, 4, calls)
		assert.Equal(t, 2, gen.Len())
	})
}
