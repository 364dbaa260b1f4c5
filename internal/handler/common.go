package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dateLayout is the wire format for check-in/check-out dates.
const dateLayout = "2006-01-02"

// getUserID extracts the user_id placed in the echo context by JWTAuth and
// converts it to uint64.  JWT numeric claims arrive as float64 after JSON
// decoding, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentRole returns the role claim from the echo context, or "" when the
// request is unauthenticated.
func currentRole(c echo.Context) string {
	if r, ok := c.Get("role").(string); ok {
		return r
	}
	return ""
}

// parseDate parses a YYYY-MM-DD calendar date in UTC.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
