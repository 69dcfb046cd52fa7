package dashhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ruleforty/internal/logger"
	"ruleforty/internal/metrics"
	"ruleforty/internal/session"
)

const (
	ctxSessionState = "ruleforty.session.state"
	ctxSessionID    = "ruleforty.session.id"
)

// sessionMiddleware 根据 cookie 找到会话状态，未知或过期的 id 会得到新的会话。
func sessionMiddleware(mgr *session.Manager, cookie CookieConfig, rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(cookie.Name)
		id, st, created := mgr.Resolve(raw)
		if created {
			rec.SessionCreated()
			logger.With("session", id).Debug("session created", "ip", c.ClientIP())
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookie.Name, id, int(cookie.MaxAge.Seconds()), "/", "", cookie.Secure, true)
		c.Set(ctxSessionState, st)
		c.Set(ctxSessionID, id)
		c.Next()
	}
}

func stateFrom(c *gin.Context) *session.State {
	v, ok := c.Get(ctxSessionState)
	if !ok {
		return nil
	}
	st, _ := v.(*session.State)
	return st
}

func sessionIDFrom(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
