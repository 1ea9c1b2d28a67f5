package gin

import (
	"net/http"

	"github.com/fwojciec/llmfetch"
	"github.com/gin-gonic/gin"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	llmfetch.ECONFLICT:       http.StatusConflict,
	llmfetch.EINVALID:        http.StatusBadRequest,
	llmfetch.ENOTFOUND:       http.StatusNotFound,
	llmfetch.ENOTIMPLEMENTED: http.StatusNotImplemented,
	llmfetch.EINTERNAL:       http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// renderError writes err as {"error": message}.
func renderError(c *gin.Context, err error) {
	renderErrorAs(c, err, "Internal error.")
}

// renderErrorAs is renderError with a caller-chosen message for internal
// errors. Internal details are only logged.
func renderErrorAs(c *gin.Context, err error, internal string) {
	code := llmfetch.ErrorCode(err)
	msg := llmfetch.ErrorMessage(err)
	if code == llmfetch.EINTERNAL {
		_ = c.Error(err)
		msg = internal
	}
	c.JSON(ErrorStatusCode(code), gin.H{"error": msg})
}
