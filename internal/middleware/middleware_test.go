package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-reservation/internal/config"
	"github.com/iliyamo/hostel-reservation/internal/utils"
)

const secret = "test-secret"

func serve(t *testing.T, mw []echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthStoresGuestAndRole(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, "STAFF", 5)
	require.NoError(t, err)

	rec, c := serve(t, []echo.MiddlewareFunc{JWTAuth(secret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	id, ok := GuestID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "STAFF", c.Get(ContextRole))
}

func TestJWTAuthRejects(t *testing.T) {
	other, err := utils.NewAccessToken("another-secret", 1, "GUEST", 5)
	require.NoError(t, err)
	expired, err := utils.NewAccessToken(secret, 1, "GUEST", -5)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":       "",
		"not bearer":    "Basic abc",
		"bad signature": "Bearer " + other.Token,
		"expired":       "Bearer " + expired.Token,
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := serve(t, []echo.MiddlewareFunc{JWTAuth(secret)}, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	guest, err := utils.NewAccessToken(secret, 1, "GUEST", 5)
	require.NoError(t, err)
	staff, err := utils.NewAccessToken(secret, 2, "STAFF", 5)
	require.NoError(t, err)
	chain := []echo.MiddlewareFunc{JWTAuth(secret), RequireRole("STAFF")}

	rec, _ := serve(t, chain, "Bearer "+guest.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())

	rec, _ = serve(t, chain, "Bearer "+staff.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubjectID(t *testing.T) {
	id, ok := subjectID(float64(7))
	assert.True(t, ok)
	assert.Equal(t, uint64(7), id)

	id, ok = subjectID("12")
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)

	_, ok = subjectID("x")
	assert.False(t, ok)
	_, ok = subjectID(float64(0))
	assert.False(t, ok)
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	chain := []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
	}
	rec, _ := serve(t, chain, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:POST /v1/reservations", buildRateKey(cfg, c))

	c.Set(ContextGuestID, uint64(9))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:9", buildRateKey(cfg, c))
}

func TestBucketForSeparatesWrites(t *testing.T) {
	cfg := config.RateLimitConfig{Capacity: 60, WriteCapacity: 10}

	suffix, capacity := bucketFor(cfg, http.MethodGet)
	assert.Equal(t, "", suffix)
	assert.Equal(t, 60, capacity)

	suffix, capacity = bucketFor(cfg, http.MethodPost)
	assert.Equal(t, ":w", suffix)
	assert.Equal(t, 10, capacity)

	cfg.WriteCapacity = 0
	_, capacity = bucketFor(cfg, http.MethodPost)
	assert.Equal(t, 60, capacity)
}

func TestParseBucketResult(t *testing.T) {
	res, ok := parseBucketResult([]interface{}{int64(0), int64(0), int64(1500)})
	require.True(t, ok)
	assert.False(t, res.allowed)
	assert.Equal(t, 1500*time.Millisecond, res.retry)

	res, ok = parseBucketResult([]interface{}{int64(1), int64(4), int64(0)})
	require.True(t, ok)
	assert.True(t, res.allowed)
	assert.Equal(t, int64(4), res.remaining)

	_, ok = parseBucketResult([]interface{}{"1", int64(4)})
	assert.False(t, ok)
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	key := func(target string) string {
		return cacheKeyFrom(cfg, e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder()))
	}
	assert.NotEqual(t, key("/v1/rooms?page=1"), key("/v1/rooms?page=2"))
	assert.Equal(t, key("/v1/rooms/3"), key("/v1/rooms/3"))

	cfg.KeyStrategy = "path"
	assert.Equal(t, key("/v1/rooms?page=1"), key("/v1/rooms?page=2"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestCaptureWriterAbandonsOversizedBodies(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	assert.False(t, cw.overflow)
	_, _ = cw.Write([]byte("def"))
	assert.True(t, cw.overflow)
	assert.Equal(t, "abcdef", rec.Body.String())
}
