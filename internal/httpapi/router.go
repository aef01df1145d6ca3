// Package httpapi serves the estimator, vitals, tips and coach over HTTP.
package httpapi

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/easeaico/neuromirror/internal/coach"
	"github.com/easeaico/neuromirror/internal/emotion"
	"github.com/easeaico/neuromirror/internal/tips"
	"github.com/easeaico/neuromirror/internal/vitals"
)

// Server holds the services behind the API. Coach and Chat are optional.
type Server struct {
	Emotions *emotion.Service
	Vitals   *vitals.Simulator
	Tips     *tips.Service
	Coach    *coach.Coach
	Chat     *coach.Chat
}

// NewRouter registers every route on a fresh mux.Router.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/estimate", s.estimateHandler).Methods(http.MethodPost)
	api.HandleFunc("/baselines/{user}", s.getBaselineHandler).Methods(http.MethodGet)
	api.HandleFunc("/baselines/{user}", s.putBaselineHandler).Methods(http.MethodPut)
	api.HandleFunc("/expression", s.expressionHandler).Methods(http.MethodPost)
	api.HandleFunc("/vitals/sample", s.vitalsSampleHandler).Methods(http.MethodGet)
	api.HandleFunc("/vitals/stream", s.vitalsStreamHandler).Methods(http.MethodGet)
	api.HandleFunc("/session/series", s.sessionSeriesHandler).Methods(http.MethodGet)
	api.HandleFunc("/tips/random", s.randomTipHandler).Methods(http.MethodGet)
	api.HandleFunc("/tips/search", s.searchTipsHandler).Methods(http.MethodGet)
	api.HandleFunc("/coach", s.coachHandler).Methods(http.MethodPost)
	api.HandleFunc("/coach/chat", s.chatHandler).Methods(http.MethodPost)

	return r
}

// Handler returns the router wrapped in the standard middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.NewRouter()
	h = logRequests(h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false), handlers.RecoveryLogger(recoveryLogger{}))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(h)
	return withRequestID(h)
}
