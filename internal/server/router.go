package server

import "net/http"

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/decode", s.handleDecode)
	mux.HandleFunc("/serialize", s.handleSerialize)
	mux.HandleFunc("/dialects", s.handleDialects)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/artifacts/", s.handleArtifactDownload)
	return mux
}
