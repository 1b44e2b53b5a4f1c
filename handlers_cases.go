package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"fasaldoc/cases"
	"fasaldoc/models"
)

// handleListCases returns the farmer's cases, most recent first, optionally
// filtered by ?status= and ?q=.
func (a *App) handleListCases(w http.ResponseWriter, r *http.Request) {
	owner := mustUserID(r).Hex()
	q := r.URL.Query()
	all := a.svc.Cases().List(r.Context(), owner)
	_ = json.NewEncoder(w).Encode(cases.Filter(all, q.Get("status"), q.Get("q")))
}

func (a *App) handleCaseStats(w http.ResponseWriter, r *http.Request) {
	owner := mustUserID(r).Hex()
	_ = json.NewEncoder(w).Encode(cases.Summarize(a.svc.Cases().List(r.Context(), owner)))
}

// handleGetCase returns one case and the last follow-up assessment shown for it.
func (a *App) handleGetCase(w http.ResponseWriter, r *http.Request) {
	owner := mustUserID(r).Hex()
	id := chi.URLParam(r, "id")
	rec, err := a.svc.Cases().Get(r.Context(), owner, id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	out := caseResp{Case: rec}
	if as, ok := a.svc.LastAssessment(owner, id); ok {
		out.Assessment = &as
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleUpdateCase adds a note and/or sets the status.
func (a *App) handleUpdateCase(w http.ResponseWriter, r *http.Request) {
	owner := mustUserID(r).Hex()
	id := chi.URLParam(r, "id")

	var req updateCaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	var status models.CaseStatus
	if strings.TrimSpace(req.Status) == "" {
		rec, err := a.svc.Cases().Get(r.Context(), owner, id)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		status = rec.Status
	} else {
		status = models.CaseStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
		if !status.Valid() {
			http.Error(w, "status must be one of ONGOING, MONITORING, RECOVERED, WORSENED, UNKNOWN", http.StatusBadRequest)
			return
		}
	}

	rec, err := a.svc.Cases().AddNote(r.Context(), owner, id, req.Note, status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(rec)
}

// handleFollowUp re-evaluates a case from a new photo. An unreadable model
// answer is not an error: the case comes back unchanged without assessment.
func (a *App) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	id := chi.URLParam(r, "id")

	var req followUpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		_, lang = a.profileDefaults(r.Context(), uid)
	}

	rec, as, err := a.svc.FollowUp(r.Context(), uid.Hex(), id, req.ImageBase64, lang)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(followUpResp{Case: rec, Assessment: as})
}

// handleDeleteCases empties the farmer's history. Requires ?confirm=true.
func (a *App) handleDeleteCases(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		http.Error(w, "add ?confirm=true to delete all cases", http.StatusBadRequest)
		return
	}
	owner := mustUserID(r).Hex()
	a.svc.Cases().DeleteAll(r.Context(), owner)
	a.svc.ForgetAssessments(owner)
	_ = json.NewEncoder(w).Encode(bson.M{"ok": true})
}
