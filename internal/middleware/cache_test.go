package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safehaven/peer-support-core/internal/config"
)

func TestCachedPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`{"entries":[]}`)

	payload, err := encodeCached(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodeCached(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodeCachedRejectsTruncatedPayload(t *testing.T) {
	_, _, _, ok := decodeCached([]byte{0, 0})
	assert.False(t, ok)

	// Header length pointing past the payload.
	payload, err := encodeCached(http.StatusOK, http.Header{}, nil)
	require.NoError(t, err)
	_, _, _, ok = decodeCached(payload[:6])
	assert.False(t, ok)
}

func TestFeedCacheKeyVariesByRouteAndQuery(t *testing.T) {
	e := echo.New()
	ctx := func(path, query string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, path+"?"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return c
	}

	base := feedCacheKey("feed", ctx("/v1/schools/:id/feed", "limit=10"))
	assert.Equal(t, base, feedCacheKey("feed", ctx("/v1/schools/:id/feed", "limit=10")))
	assert.NotEqual(t, base, feedCacheKey("feed", ctx("/v1/schools/:id/feed", "limit=20")))
	assert.NotEqual(t, base, feedCacheKey("feed", ctx("/v1/resources", "limit=10")))
}

func TestCacheMiddlewarePassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	mw := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/resources", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-Cache"), "disabled cache adds no headers")
}
