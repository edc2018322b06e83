package graph

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/graph-gophers/graphql-go/relay"
)

// Handler serves GraphQL requests over HTTP. Every request gets its own
// loaders.
func Handler(s *Schema) http.Handler {
	h := &relay.Handler{Schema: s.Schema}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r.WithContext(WithLoaders(r.Context(), s.svc)))
	})
}

// Playground serves the GraphQL playground for the API at endpoint.
func Playground(endpoint string) http.Handler {
	return playground.Handler("CRM", endpoint)
}
