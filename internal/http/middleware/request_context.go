package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/greenscape-backend/internal/platform/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
	HeaderUserID    = "X-User-Id"
	HeaderSessionID = "X-Session-Id"

	maxHeaderIDLen = 128
)

// AttachRequestContext stores trace ids and caller identity on the request context and
// echoes the ids back. The trace id prefers the client header, then the active span.
// A session id is generated when the client sent none so it can be reused.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{
			RequestID: headerID(c, HeaderRequestID),
			TraceID:   headerID(c, HeaderTraceID),
			Identity: ctxutil.Identity{
				UserID:    headerID(c, HeaderUserID),
				SessionID: headerID(c, HeaderSessionID),
				IPAddress: c.ClientIP(),
			},
		}
		if rd.RequestID == "" {
			rd.RequestID = uuid.NewString()
		}
		if rd.TraceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				rd.TraceID = sc.TraceID().String()
			} else {
				rd.TraceID = uuid.NewString()
			}
		}
		if rd.Identity.SessionID == "" {
			rd.Identity.SessionID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Set("trace_id", rd.TraceID)
		c.Set("request_id", rd.RequestID)
		h := c.Writer.Header()
		h.Set(HeaderTraceID, rd.TraceID)
		h.Set(HeaderRequestID, rd.RequestID)
		h.Set(HeaderSessionID, rd.Identity.SessionID)
		c.Next()
	}
}

// headerID trims and bounds client-supplied ids before they reach logs or storage.
func headerID(c *gin.Context, name string) string {
	v := strings.TrimSpace(c.GetHeader(name))
	if len(v) > maxHeaderIDLen {
		v = v[:maxHeaderIDLen]
	}
	return v
}
