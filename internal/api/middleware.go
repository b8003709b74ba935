package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"

	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

// withMiddleware wraps h with compression, panic recovery, CORS (restricted
// to corsOrigins), and a request logger that writes structured access logs
// at Info for /api/* and Debug otherwise.
func withMiddleware(h http.Handler, corsOrigins []string) http.Handler {
	wrapped := handlers.CompressHandler(h)
	wrapped = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(wrapped)
	wrapped = handlers.CORS(
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Origin"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedOrigins(corsOrigins),
	)(wrapped)

	return handlers.CustomLoggingHandler(io.Discard, wrapped, func(_ io.Writer, params handlers.LogFormatterParams) {
		if strings.HasPrefix(params.Request.RequestURI, "/api/") {
			log.Infof("%s %s (%d, %.02fkb, %dms)",
				params.Request.Method, params.URL.RequestURI(),
				params.StatusCode, float32(params.Size)/1024,
				time.Since(params.TimeStamp).Milliseconds())
		} else {
			log.Debugf("%s %s (%d, %.02fkb, %dms)",
				params.Request.Method, params.URL.RequestURI(),
				params.StatusCode, float32(params.Size)/1024,
				time.Since(params.TimeStamp).Milliseconds())
		}
	})
}
