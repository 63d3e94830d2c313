package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"SieveAPI/internal/logger"
	"SieveAPI/internal/query"
	"SieveAPI/internal/resolver"
)

// reservedParams are consumed by the handler itself; everything else in the
// query string is a filter key.
var reservedParams = []string{"sort", "limit", "offset"}

// ListHandler serves GET /api/{resource}: parses the filter and sort
// parameters against the registry, executes the translated query and returns
// the rows. Every parse failure is reported; the caller sees the complete
// diagnostic in one response.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	sortKeys := query.SplitSortParam(params["sort"])
	limit, offset, windowErrs := parseWindow(params)
	for _, name := range reservedParams {
		params.Del(name)
	}

	fspec, errs := query.ParseFiltering(params, res)
	errs = append(errs, windowErrs...)
	sspec, sortErr := query.ParseSorting(sortKeys, res)
	if sortErr != nil {
		if pe, ok := sortErr.(*query.ParseError); ok {
			errs = append(errs, pe)
		} else {
			errs = append(errs, &query.ParseError{Kind: query.ErrBadValue, Field: "sort", Reason: sortErr.Error()})
		}
	}
	if len(errs) > 0 {
		writeParseErrors(w, r, errs)
		return
	}

	items, err := resolver.List(r.Context(), resolver.ListRequest{
		Resource:  res,
		Filtering: fspec,
		Sorting:   sspec,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		logger.Error("list_failed", map[string]any{
			"resource": res.Name,
			"error":    err.Error(),
		})
		http.Error(w, "Failed to resolve data: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, items)
}

// requireGet rejects everything but GET. Routes are registered without a
// method pattern so that OPTIONS preflights reach the CORS middleware.
func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		logger.Warn("method_not_allowed", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		http.Error(w, "Only GET allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func lookupResource(w http.ResponseWriter, r *http.Request) (*query.Resource, bool) {
	name := r.PathValue("resource")
	res, ok := query.GetResource(name)
	if !ok {
		logger.Warn("unknown_resource", map[string]any{
			"resource": name,
			"path":     r.URL.Path,
		})
		http.Error(w, "Unknown resource: "+name, http.StatusNotFound)
		return nil, false
	}
	return res, true
}

func parseWindow(params url.Values) (limit, offset uint64, errs query.ParseErrors) {
	for _, name := range []string{"limit", "offset"} {
		raw := params.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs = append(errs, &query.ParseError{
				Kind:   query.ErrBadValue,
				Field:  name,
				Raw:    raw,
				Reason: "not a non-negative integer",
			})
			continue
		}
		if name == "limit" {
			limit = n
		} else {
			offset = n
		}
	}
	return limit, offset, errs
}

func writeParseErrors(w http.ResponseWriter, r *http.Request, errs query.ParseErrors) {
	logger.Warn("bad_request", map[string]any{
		"path":   r.URL.Path,
		"errors": errs.Error(),
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"errors": errs})
}

func writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
	}
}
