package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"relaylog/pkg/utils"
)

// RegisterArchive registers the archive browsing endpoint.
func (d Deps) RegisterArchive(r *mux.Router) {
	r.HandleFunc("/archive", d.archivePage).Methods(http.MethodGet)
}

func (d Deps) archivePage(w http.ResponseWriter, r *http.Request) {
	page := 0
	if s := r.URL.Query().Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}
	pageSize := 0
	if s := r.URL.Query().Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			utils.JSONError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		pageSize = n
	}
	p, err := d.Archive.Page(page, pageSize)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, p)
}
