package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"relaylog/pkg/errs"
	"relaylog/pkg/logger"
	"relaylog/pkg/models"
	"relaylog/pkg/telemetry"
	"relaylog/pkg/utils"
)

// RegisterAdmin registers the operator surface: compaction trigger and
// typed admin documents.
func (d Deps) RegisterAdmin(r *mux.Router) {
	r.HandleFunc("/admin/compact", d.compact).Methods(http.MethodPost)
	r.HandleFunc("/admin/docs/{kind}", d.getAdminDoc).Methods(http.MethodGet)
	r.HandleFunc("/admin/docs/{kind}", d.putAdminDoc).Methods(http.MethodPut)
}

// compact runs one compaction pass. Bounds resolve request body first, then
// the stored admin config document, then configured defaults.
func (d Deps) compact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		KeepLive  int `json:"keep_live"`
		MaxPerRun int `json:"max_per_run"`
	}
	if r.Body != nil {
		raw, err := io.ReadAll(r.Body)
		if err == nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				utils.JSONError(w, http.StatusBadRequest, "invalid json")
				return
			}
		}
	}
	if body.KeepLive < 0 || body.MaxPerRun < 0 {
		utils.JSONError(w, http.StatusBadRequest, "bounds must be non-negative")
		return
	}
	if body.KeepLive == 0 || body.MaxPerRun == 0 {
		if cfg, err := d.Admin.Config(); err == nil {
			if body.KeepLive == 0 {
				body.KeepLive = cfg.KeepLive
			}
			if body.MaxPerRun == 0 {
				body.MaxPerRun = cfg.MaxPerRun
			}
		}
	}

	relocated, err := d.Compactor.Compact(body.KeepLive, body.MaxPerRun)
	telemetry.RecordCompaction(relocated, err)
	if err != nil {
		logger.Error("compaction_failed", "relocated", relocated, "error", err)
		_ = utils.JSONWrite(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"relocated": errs.RelocatedCount(err),
		})
		return
	}
	remaining, _ := d.Compactor.RemainingLive()
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"relocated":      relocated,
		"remaining_live": remaining,
	})
}

func (d Deps) getAdminDoc(w http.ResponseWriter, r *http.Request) {
	kind := models.AdminKind(mux.Vars(r)["kind"])
	doc, err := d.Admin.Get(kind)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, doc)
}

func (d Deps) putAdminDoc(w http.ResponseWriter, r *http.Request) {
	kind := models.AdminKind(mux.Vars(r)["kind"])
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if err := d.Admin.Put(kind, raw); err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"kind": string(kind), "status": "saved"})
}
