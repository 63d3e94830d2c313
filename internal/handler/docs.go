package handler

import (
	"net/http"

	"SieveAPI/internal/query"
)

// DocsHandler serves GET /api/{resource}/docs: the declared fields, their
// types, supported operators and sortability. Read-only registry
// introspection for generated API documentation.
func DocsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	res, ok := lookupResource(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, query.Describe(res))
}
