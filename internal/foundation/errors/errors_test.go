package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError_Builder(t *testing.T) {
	cause := stderrors.New("no such file")
	err := WrapError(cause, CategoryContent, "page not found").
		Warning().
		WithContext("page", "/guide/list").
		Build()

	assert.Equal(t, CategoryContent, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryNever, err.RetryStrategy())
	assert.ErrorIs(t, err, cause)
	page, ok := err.Context().GetString("page")
	require.True(t, ok)
	assert.Equal(t, "/guide/list", page)
	assert.Equal(t, "[content:warning] page not found: no such file", err.Error())
}

func TestClassifiedError_WithContextCopies(t *testing.T) {
	base := ConfigError("bad value").Build()
	derived := base.WithContext("field", "output.formats")

	_, ok := base.Context().Get("field")
	assert.False(t, ok)
	field, _ := derived.Context().GetString("field")
	assert.Equal(t, "output.formats", field)
	assert.True(t, stderrors.Is(derived, base))
}

func TestAsClassified_WalksChain(t *testing.T) {
	inner := LintError("sidebar has errors").Build()
	wrapped := fmt.Errorf("build: %w", inner)

	ce, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, ce)
	assert.True(t, HasCategory(wrapped, CategoryLint))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	assert.Equal(t, SeverityError, GetSeverity(stderrors.New("plain")))
}

func TestConvenienceConstructors(t *testing.T) {
	assert.True(t, ConfigError("x").Build().IsFatal())
	assert.False(t, ConfigError("x").Build().CanRetry())
	assert.True(t, NetworkError("x").Build().CanRetry())
	assert.True(t, FileSystemError("x").Build().CanRetry())
	assert.False(t, LintError("x").Build().CanRetry())
}

func TestCLIErrorAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{stderrors.New("plain"), 1},
		{ValidationError("x").Build(), 2},
		{LintError("x").Build(), 3},
		{NotFoundError("x").Build(), 4},
		{ConfigError("x").Build(), 7},
		{NetworkError("x").Build(), 8},
		{InternalError("x").Build(), 10},
		{BuildError("x").Build(), 11},
		{DaemonError("x").Build(), 12},
		{fmt.Errorf("wrapped: %w", ConfigError("x").Build()), 7},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, a.ExitCodeFor(tc.err), "%v", tc.err)
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out, logs bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out

	code := a.Report(ConfigError("config file not found").WithContext("path", "docnav.yaml").Build())
	assert.Equal(t, 7, code)
	assert.Equal(t, "Error: config file not found\n", out.String())
	assert.Contains(t, logs.String(), "category=config")

	out.Reset()
	code = a.Report(BuildError("emit failed").Build())
	assert.Equal(t, 11, code)
	assert.Contains(t, out.String(), "use -v for details")
}

func TestHTTPErrorAdapter(t *testing.T) {
	a := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	assert.Equal(t, http.StatusNotFound, a.StatusCodeFor(NotFoundError("x").Build()))
	assert.Equal(t, http.StatusBadRequest, a.StatusCodeFor(ValidationError("x").Build()))
	assert.Equal(t, http.StatusInternalServerError, a.StatusCodeFor(stderrors.New("x")))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sidebar", nil)
	a.WriteErrorResponse(rec, req, NotFoundError("no sidebar for path").WithContext("path", "/style-guide/").Build())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no sidebar for path","code":"not_found","details":{"path":"/style-guide/"}}`, rec.Body.String())
}
