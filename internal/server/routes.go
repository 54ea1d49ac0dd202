package server

import (
	"net/http"
	"sort"
	"strings"
)

// RouteDoc describes one registered API route for the /api/routes index.
type RouteDoc struct {
	Method  string `json:"method"`
	Pattern string `json:"pattern"`
	Summary string `json:"summary,omitempty"`
	Example string `json:"example,omitempty"`
}

// RouteRegistry collects the docs for every route wired through Handle so
// the server can expose its own surface without a hand-maintained list.
type RouteRegistry struct {
	routes []RouteDoc
}

// Handle registers h on mux under "METHOD /pattern" and records its doc.
func (rr *RouteRegistry) Handle(mux *http.ServeMux, methodAndPattern, summary, example string, h http.HandlerFunc) {
	method, pattern, _ := strings.Cut(methodAndPattern, " ")
	rr.routes = append(rr.routes, RouteDoc{
		Method:  method,
		Pattern: pattern,
		Summary: summary,
		Example: example,
	})
	mux.HandleFunc(methodAndPattern, h)
}

// List returns the registered routes sorted by pattern then method.
func (rr *RouteRegistry) List() []RouteDoc {
	out := make([]RouteDoc, len(rr.routes))
	copy(out, rr.routes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Method < out[j].Method
	})
	return out
}
