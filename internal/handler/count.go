package handler

import (
	"net/http"

	"SieveAPI/internal/logger"
	"SieveAPI/internal/query"
	"SieveAPI/internal/resolver"
)

// CountHandler serves GET /api/{resource}/count over the same filter surface
// as the list endpoint.
func CountHandler(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	for _, name := range reservedParams {
		params.Del(name)
	}

	fspec, errs := query.ParseFiltering(params, res)
	if len(errs) > 0 {
		writeParseErrors(w, r, errs)
		return
	}

	count, err := resolver.Count(r.Context(), res, fspec)
	if err != nil {
		logger.Error("count_failed", map[string]any{
			"resource": res.Name,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to count data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, map[string]int64{"count": count})
}
