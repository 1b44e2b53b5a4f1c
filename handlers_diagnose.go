package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"fasaldoc/pipeline"
)

// handleDiagnose analyses a crop photo and opens a case for it.
func (a *App) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	var req diagnoseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Crop) == "" {
		http.Error(w, "crop is required", http.StatusBadRequest)
		return
	}
	region, lang := a.requestDefaults(r, req.Region, req.Language)

	// Model calls are bounded by the gateway timeout, not the 5s db budget.
	res, err := a.svc.Diagnose(r.Context(), uid.Hex(), pipeline.DiagnoseRequest{
		Region:       region,
		Crop:         strings.TrimSpace(req.Crop),
		LanguageCode: lang,
		ImageBase64:  req.ImageBase64,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(res)
}

// handleChat answers a free-text farmer question.
func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	uid := mustUserID(r)
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	region, lang := a.requestDefaults(r, req.Region, req.Language)

	reply, err := a.svc.Chat(r.Context(), uid.Hex(), pipeline.ChatRequest{
		Region:       region,
		Crop:         strings.TrimSpace(req.Crop),
		LanguageCode: lang,
		Message:      req.Message,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(reply)
}

// requestDefaults fills region and language from the farmer's profile, then
// from the server default region. An empty language means auto.
func (a *App) requestDefaults(r *http.Request, region, lang string) (string, string) {
	region = strings.TrimSpace(region)
	lang = strings.TrimSpace(lang)
	if region == "" || lang == "" {
		pRegion, pLang := a.profileDefaults(r.Context(), mustUserID(r))
		if region == "" {
			region = pRegion
		}
		if lang == "" {
			lang = pLang
		}
	}
	if region == "" {
		region = a.cfg.DefaultRegion
	}
	return region, lang
}
