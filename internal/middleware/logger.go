package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SlowRequest is the duration above which a request is logged at Warn.
const SlowRequest = 2 * time.Second

// ZapRequestLogger logs one line per request. Server errors are logged at
// Error, slow requests at Warn. With a debug-enabled logger the message is a
// short human-readable summary.
func ZapRequestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				elapsed := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", elapsed),
					zap.String("remote_ip", r.RemoteAddr),
				}
				if reqID := middleware.GetReqID(r.Context()); reqID != "" {
					fields = append(fields, zap.String("request_id", reqID))
				}
				if lang := ww.Header().Get("Content-Language"); lang != "" {
					fields = append(fields, zap.String("lang", lang))
				}

				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("request failed", fields...)
				case elapsed > SlowRequest:
					logger.Warn("slow request", fields...)
				case logger.Core().Enabled(zapcore.DebugLevel):
					logger.Info(fmt.Sprintf("%s %s %d %s", r.Method, r.URL.Path, status, elapsed), fields...)
				default:
					logger.Info("request completed", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
