package xpath_test

import (
	"testing"

	"github.com/fwojciec/llmfetch"
	"github.com/fwojciec/llmfetch/xpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsHTML = `
<!DOCTYPE html>
<html>
<body>
    <div class="products-list">
        <article class="product-card">
            <h2 class="product-title">Wireless Headphones</h2>
            <div class="product-price">$89.99</div>
            <span class="product-rating">4.5</span>
            <button class="product-stock">In Stock</button>
        </article>
        <article class="product-card">
            <h2 class="product-title">Smart Watch</h2>
            <div class="product-price">$199.99</div>
            <span class="product-rating">4.8</span>
            <button class="product-stock">In Stock</button>
        </article>
        <article class="product-card">
            <h2 class="product-title">Laptop Stand</h2>
            <div class="product-price">$45.00</div>
            <span class="product-rating">4.2</span>
            <button class="product-stock">Out of Stock</button>
        </article>
    </div>
</body>
</html>
`

func TestEvaluator_Evaluate(t *testing.T) {
	t.Parallel()

	t.Run("returns matched text in document order", func(t *testing.T) {
		t.Parallel()

		e := xpath.NewEvaluator()

		got, err := e.Evaluate(productsHTML, "//h2[@class='product-title']")
		require.NoError(t, err)
		assert.Equal(t, []string{"Wireless Headphones", "Smart Watch", "Laptop Stand"}, got)
	})

	t.Run("trims text nodes", func(t *testing.T) {
		t.Parallel()

		e := xpath.NewEvaluator()

		got, err := e.Evaluate("<html><body><p>\n   spaced   \n</p></body></html>", "//p/text()")
		require.NoError(t, err)
		assert.Equal(t, []string{"spaced"}, got)
	})

	t.Run("returns the title of a page", func(t *testing.T) {
		t.Parallel()

		e := xpath.NewEvaluator()
		page := `<!DOCTYPE html><html><head><title>Example Domain</title></head><body><h1>Example Domain</h1></body></html>`

		got, err := e.Evaluate(page, "//title")
		require.NoError(t, err)
		assert.Equal(t, []string{"Example Domain"}, got)
	})

	t.Run("returns empty slice when nothing matches", func(t *testing.T) {
		t.Parallel()

		e := xpath.NewEvaluator()

		got, err := e.Evaluate(productsHTML, "//table")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("returns error for a malformed query", func(t *testing.T) {
		t.Parallel()

		e := xpath.NewEvaluator()

		_, err := e.Evaluate(productsHTML, "//div[")
		require.Error(t, err)
		assert.Equal(t, llmfetch.EINVALID, llmfetch.ErrorCode(err))
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		e := xpath.NewEvaluator()

		_, err := e.Evaluate("", "//title")
		require.Error(t, err)
	})
}
