// Package api assembles the HTTP routing surface.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"relaylog/pkg/api/handlers"
	"relaylog/pkg/telemetry"
	"relaylog/pkg/utils"
)

// NewRouter builds the service router. ready gates the readiness probe on
// the storage layer being open.
func NewRouter(deps handlers.Deps, ready func() bool) *mux.Router {
	r := mux.NewRouter()
	r.Use(telemetry.Middleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			utils.JSONError(w, http.StatusServiceUnavailable, "store not ready")
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)

	r.Handle("/metrics", telemetry.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	deps.RegisterMessages(v1)
	deps.RegisterArchive(v1)
	deps.RegisterAdmin(v1)
	return r
}
