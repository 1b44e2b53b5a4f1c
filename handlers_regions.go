package main

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"fasaldoc/language"
	"fasaldoc/regions"
)

// handleListRegions returns every state with its spoken language and the
// current season.
func (a *App) handleListRegions(w http.ResponseWriter, r *http.Request) {
	cat := a.svc.Catalog()
	month := a.now().Month()
	out := make([]regionSummary, 0, len(cat.Names()))
	for _, name := range cat.Names() {
		p := cat.Profile(name)
		out = append(out, regionSummary{
			Name:          p.Name,
			Dialect:       p.DefaultLanguage(),
			TTSLang:       p.Voice(),
			CurrentSeason: cat.SeasonFor(name, month),
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (a *App) handleGetRegion(w http.ResponseWriter, r *http.Request) {
	cat := a.svc.Catalog()
	name := chi.URLParam(r, "name")
	p, ok := cat.Lookup(name)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(regionResp{Profile: p, CurrentSeason: cat.SeasonFor(name, a.now().Month())})
}

func (a *App) handleListCrops(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(regions.Crops)
}

func (a *App) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	out := make([]languageResp, 0, len(language.Codes))
	for code, name := range language.Codes {
		out = append(out, languageResp{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	_ = json.NewEncoder(w).Encode(out)
}
