package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"fasaldoc/cases"
	"fasaldoc/extract"
	"fasaldoc/gateway"
	"fasaldoc/pipeline"
)

// writeError maps workflow errors to HTTP statuses. Model failures carry a
// message meant for the farmer; anything unexpected is logged and hidden.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr *extract.ParseError
		gwErr    *gateway.GatewayError
	)
	switch {
	case errors.Is(err, pipeline.ErrNoImage), errors.Is(err, pipeline.ErrInvalidImage), errors.Is(err, pipeline.ErrEmptyMessage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, cases.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, pipeline.ErrBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &parseErr):
		http.Error(w, "Analysis failed: "+parseErr.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &gwErr):
		http.Error(w, "Analysis failed: "+gwErr.Message, http.StatusBadGateway)
	default:
		a.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
