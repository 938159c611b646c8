package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sMiccu/shoporder/internal/logging"
)

const bodyLogLimit = 8 * 1024

// Keys whose values never reach the log.
var redactedKeys = map[string]struct{}{
	"password":      {},
	"authorization": {},
	"token":         {},
	"access_token":  {},
	"secret":        {},
	"client_secret": {},
}

// Logging attaches a request-scoped slog logger to the gin context and logs
// one line per request with capped, redacted JSON bodies.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote", c.ClientIP(),
		)
		logging.With(c, l)

		reqBody := captureRequestBody(c)

		rec := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if body := rec.logged(c.Writer.Header().Get("Content-Type")); body != "" {
			attrs = append(attrs, "resp_body", body)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("http_request", attrs...)
		case status >= http.StatusBadRequest:
			l.Warn("http_request", attrs...)
		default:
			l.Info("http_request", attrs...)
		}
	}
}

// captureRequestBody reads a JSON request body for logging and restores it
// untouched for the handlers downstream.
func captureRequestBody(c *gin.Context) string {
	if c.Request.Body == nil || !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, bodyLogLimit+1))
	_ = c.Request.Body.Close()
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	logged := raw
	truncated := false
	if len(logged) > bodyLogLimit {
		logged = logged[:bodyLogLimit]
		truncated = true
	}
	out := string(redactJSON(logged))
	if truncated {
		out += "...truncated"
	}
	return out
}

type responseRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if remain := bodyLogLimit - w.buf.Len(); remain > 0 {
		if len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) logged(contentType string) string {
	if !strings.Contains(contentType, "application/json") {
		return ""
	}
	out := string(redactJSON(w.buf.Bytes()))
	if w.buf.Len() >= bodyLogLimit {
		out += "...truncated"
	}
	return out
}

// redactJSON blanks sensitive values in a JSON document. Non-JSON input is
// returned as-is.
func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return raw
	}
	scrubbed, err := json.Marshal(scrub(doc))
	if err != nil {
		return raw
	}
	return scrubbed
}

func scrub(x any) any {
	switch v := x.(type) {
	case map[string]any:
		for k, val := range v {
			if _, hit := redactedKeys[strings.ToLower(k)]; hit {
				v[k] = "***"
				continue
			}
			v[k] = scrub(val)
		}
		return v
	case []any:
		for i := range v {
			v[i] = scrub(v[i])
		}
		return v
	default:
		return v
	}
}
