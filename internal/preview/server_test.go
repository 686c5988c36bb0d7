package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protodoc/protodoc/internal/search"
)

const previewPage = `<!DOCTYPE html><html><body>
<nav class="sidebar"><div class="sidebar-content">
<h2>Services</h2>
<ul class="nav-list">
<li class="nav-item">
<a href="#orderservice" class="nav-link">OrderService</a>
<ul class="nav-sublist">
<li><a href="#createorder" class="nav-sublink">CreateOrder</a></li>
<li><a href="#cancelorder" class="nav-sublink">CancelOrder</a></li>
</ul>
</li>
</ul>
</div></nav>
<main><h2 id="orderservice">OrderService</h2></main>
</body></html>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(":0")
	require.NoError(t, s.SetPage([]byte(previewPage)))
	return s
}

func TestServeIndex(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "OrderService")
}

func TestServeIndexBeforeFirstBuild(t *testing.T) {
	s := NewServer(":0")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchAPI(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=create", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, 1, result.Matches)
	assert.Equal(t, "1 result found", result.Message)
	require.Len(t, result.Entries, 3)
	assert.True(t, result.Entries[0].Visible, "service promoted by matching method")
	assert.True(t, result.Entries[1].Visible)
	assert.False(t, result.Entries[2].Visible)
}

func TestSearchAPIEmptyQuery(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Message)
	for _, e := range result.Entries {
		assert.True(t, e.Visible)
	}
}

func TestHealthz(t *testing.T) {
	notReady := NewServer(":0")
	rec := httptest.NewRecorder()
	notReady.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready := newTestServer(t)
	rec = httptest.NewRecorder()
	ready.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetPageSwapsEngine(t *testing.T) {
	s := newTestServer(t)

	swapped := `<nav class="sidebar"><div class="sidebar-content">
<h2>Services</h2>
<ul class="nav-list">
<li class="nav-item"><a href="#paymentservice" class="nav-link">PaymentService</a>
<ul class="nav-sublist"><li><a href="#charge" class="nav-sublink">Charge</a></li></ul>
</li>
</ul>
</div></nav>`
	require.NoError(t, s.SetPage([]byte(swapped)))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=charge", nil))
	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Matches)
}
