package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/alimasry/go-collab-vcs/branch"
	"github.com/alimasry/go-collab-vcs/errs"
	"github.com/alimasry/go-collab-vcs/version"
)

// API exposes the version store and branch manager over HTTP, next to
// the websocket collaboration endpoint.
type API struct {
	Versions *version.Store
	Branches *branch.Manager
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/docs/{id}/versions", a.listVersions)
	mux.HandleFunc("POST /api/docs/{id}/versions", a.createVersion)
	mux.HandleFunc("GET /api/docs/{id}/stats", a.stats)
	mux.HandleFunc("POST /api/docs/{id}/revert", a.revert)
	mux.HandleFunc("GET /api/versions/diff", a.diffVersions)
	mux.HandleFunc("POST /api/branches", a.createBranch)
	mux.HandleFunc("POST /api/branches/merge", a.merge)
	mux.HandleFunc("GET /api/branches/{id}/status", a.branchStatus)
	mux.HandleFunc("POST /api/branches/{id}/abandon", a.abandon)
	mux.HandleFunc("DELETE /api/branches/{id}", a.deleteBranch)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeError maps the core error kinds onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (a *API) listVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Versions.History(r.PathValue("id")))
}

func (a *API) createVersion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Message string `json:"message"`
		Author  string `json:"author"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, errs.Validation("bad request body"))
		return
	}
	v := a.Versions.Create(r.PathValue("id"), req.Content, req.Message, req.Author)
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Versions.Stats(r.PathValue("id")))
}

func (a *API) revert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VersionID string `json:"versionId"`
		Author    string `json:"author"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, errs.Validation("bad request body"))
		return
	}
	v, err := a.Versions.Revert(r.PathValue("id"), req.VersionID, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) diffVersions(w http.ResponseWriter, r *http.Request) {
	d, err := a.Versions.Diff(r.URL.Query().Get("a"), r.URL.Query().Get("b"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) createBranch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		FileID    string `json:"fileId"`
		ParentID  string `json:"parentId"`
		CreatedBy string `json:"createdBy"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, errs.Validation("bad request body"))
		return
	}
	b := a.Branches.Create(req.Name, req.FileID, req.ParentID, req.CreatedBy)
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) merge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID string `json:"sourceId"`
		TargetID string `json:"targetId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, errs.Validation("bad request body"))
		return
	}
	v, err := a.Branches.Merge(req.SourceID, req.TargetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) branchStatus(w http.ResponseWriter, r *http.Request) {
	st, err := a.Branches.Status(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) abandon(w http.ResponseWriter, r *http.Request) {
	if err := a.Branches.Abandon(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) deleteBranch(w http.ResponseWriter, r *http.Request) {
	if err := a.Branches.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
