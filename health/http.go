package health

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/healthgate/observe"
)

var emptyBody = []byte("{}")

// Handler returns an HTTP handler that runs one aggregation pass per request.
// It answers 200 when healthy and 503 otherwise, with the merged details as
// the JSON body. Method, path, headers and body are ignored.
func Handler(agg *Aggregator) http.Handler {
	logger := agg.Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := agg.Run(r.Context())

		status := http.StatusOK
		if !resp.IsHealthy {
			status = http.StatusServiceUnavailable
		}

		body, err := json.Marshal(resp.Details)
		if err != nil {
			logger.Error(r.Context(), "failed to encode health check details",
				observe.Field{Key: "error", Value: err},
			)
			status = http.StatusServiceUnavailable
			body = emptyBody
		}

		writeJSON(w, status, body)
	})
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
