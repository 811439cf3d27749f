package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/ardiland/ardilandcom/internal/telemetry/metrics"
	"github.com/ardiland/ardilandcom/pkg"

	log "github.com/sirupsen/logrus"
)

func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					log.Errorf("http: panic serving %s: %v\n%s", req.URL.Path, r, debug.Stack())
					if metricsManager != nil {
						metricsManager.CounterHandleRequestPanic.Inc()
					}
					pkg.WriteInternalError(respWriter, "An unexpected error occurred")
				}
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}
