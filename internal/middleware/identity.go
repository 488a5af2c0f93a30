package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// subjectID converts a JWT "sub" claim to a guest id.  Numeric claims are
// decoded by encoding/json as float64; some issuers use decimal strings.
func subjectID(v interface{}) (uint64, bool) {
	switch s := v.(type) {
	case float64:
		if s <= 0 {
			return 0, false
		}
		return uint64(s), true
	case string:
		n, err := strconv.ParseUint(s, 10, 64)
		return n, err == nil && n > 0
	}
	return 0, false
}

// GuestID returns the authenticated guest id stored by JWTAuth.
func GuestID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextGuestID).(uint64)
	return id, ok && id > 0
}

// identityKey identifies the caller for rate limiting: the guest id when
// authenticated, "anon" otherwise.
func identityKey(c echo.Context) string {
	if id, ok := GuestID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
