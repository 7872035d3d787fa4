package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"relaylog/pkg/errs"
	"relaylog/pkg/logger"
	"relaylog/pkg/models"
	"relaylog/pkg/telemetry"
	"relaylog/pkg/utils"
	"relaylog/pkg/validation"
)

// RegisterMessages registers HTTP handlers for message endpoints.
func (d Deps) RegisterMessages(r *mux.Router) {
	// /v1/messages
	r.HandleFunc("/messages", d.createMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages", d.listMessages).Methods(http.MethodGet)
	r.HandleFunc("/messages", d.deleteMessagesFiltered).Methods(http.MethodDelete)
	r.HandleFunc("/messages/delete", d.deleteMessagesBulk).Methods(http.MethodPost)

	// /v1/messages/{id}
	r.HandleFunc("/messages/{id}", d.updateMessage).Methods(http.MethodPatch)
	r.HandleFunc("/messages/{id}", d.deleteMessage).Methods(http.MethodDelete)
}

func writeErr(w http.ResponseWriter, err error) {
	utils.JSONError(w, errs.HTTPStatus(err), err.Error())
}

func (d Deps) createMessage(w http.ResponseWriter, r *http.Request) {
	var m models.Message
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	m = validation.ApplyDefaults(m)
	if err := validation.ValidateMessage(m); err != nil {
		writeErr(w, err)
		return
	}
	id, merged, err := d.Live.Append(m)
	if err != nil {
		logger.Error("message_append_failed", "error", err)
		writeErr(w, err)
		return
	}
	telemetry.RecordAppend(merged)
	_ = utils.JSONWrite(w, http.StatusCreated, map[string]any{"id": id, "merged": merged})
}

func (d Deps) listMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			utils.JSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	var window time.Duration
	if s := r.URL.Query().Get("window"); s != "" {
		wd, err := time.ParseDuration(s)
		if err != nil || wd < 0 {
			utils.JSONError(w, http.StatusBadRequest, "invalid window")
			return
		}
		window = wd
	}
	msgs, err := d.Live.Recent(limit, window)
	if err != nil {
		writeErr(w, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (d Deps) updateMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Text == "" {
		utils.JSONError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err := d.Live.Edit(id, body.Text); err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"id": id, "status": "updated"})
}

func (d Deps) deleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := d.Live.DeleteOne(id); err != nil {
		writeErr(w, err)
		return
	}
	telemetry.RecordDelete("one", 1)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (d Deps) deleteMessagesBulk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(body.IDs) == 0 {
		utils.JSONError(w, http.StatusBadRequest, "ids is required")
		return
	}
	n, err := d.Live.DeleteMany(body.IDs)
	if err != nil {
		writeErr(w, err)
		return
	}
	telemetry.RecordDelete("many", n)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"deleted": n})
}

// deleteMessagesFiltered handles DELETE /v1/messages?sender=... or
// ?older_than_days=N. Exactly one filter must be present; an unfiltered
// delete of the whole log is refused.
func (d Deps) deleteMessagesFiltered(w http.ResponseWriter, r *http.Request) {
	sender := r.URL.Query().Get("sender")
	olderThan := r.URL.Query().Get("older_than_days")
	if (sender == "") == (olderThan == "") {
		utils.JSONError(w, http.StatusBadRequest, "exactly one of sender or older_than_days is required")
		return
	}
	if sender != "" {
		n, err := d.Live.DeleteBySender(sender)
		if err != nil {
			writeErr(w, err)
			return
		}
		telemetry.RecordDelete("sender", n)
		_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"deleted": n})
		return
	}
	days, err := strconv.Atoi(olderThan)
	if err != nil || days <= 0 {
		utils.JSONError(w, http.StatusBadRequest, "invalid older_than_days")
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	n, err := d.Live.DeleteOlderThan(cutoff)
	if err != nil {
		writeErr(w, err)
		return
	}
	telemetry.RecordDelete("older_than", n)
	_ = utils.JSONWrite(w, http.StatusOK, map[string]int{"deleted": n})
}
