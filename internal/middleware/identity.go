package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/utils"
)

// Keys under which JWTAuth stores the caller's identity on the echo
// context.  Values are already converted to their Go types.
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxClientID = "client_id"
)

// CurrentIdentity returns the authenticated caller.  ok is false on
// routes not behind JWTAuth.
func CurrentIdentity(c echo.Context) (id utils.Identity, ok bool) {
	uid, ok := c.Get(CtxUserID).(uint64)
	if !ok || uid == 0 {
		return utils.Identity{}, false
	}
	id.UserID = uid
	id.Role, _ = c.Get(CtxRole).(string)
	id.ClientID, _ = c.Get(CtxClientID).(uint64)
	return id, true
}

// currentUserID renders the caller for rate-limit keys and logs; "anon"
// when unauthenticated.
func currentUserID(c echo.Context) string {
	if id, ok := CurrentIdentity(c); ok {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "anon"
}

// claimUint converts a numeric JWT claim.  encoding/json decodes numbers
// as float64; some issuers send numeric strings.
func claimUint(v any) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil
	}
	return 0, false
}
