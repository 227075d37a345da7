package handlers

import (
	"github.com/gorilla/mux"
)

// NewRouter wires the API routes
func NewRouter(generate *GenerateHandler, projects *ProjectHandler) *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/generate/text", generate.HandleText).Methods("POST")
	api.HandleFunc("/generate/resume", generate.HandleResume).Methods("POST")
	api.HandleFunc("/generate/analysis", generate.HandleAnalysis).Methods("POST")

	api.HandleFunc("/projects", projects.HandleList).Methods("GET")
	api.HandleFunc("/projects", projects.HandleCreate).Methods("POST")
	api.HandleFunc("/profile/{id}", projects.HandleUpdateProfile).Methods("PUT")

	return router
}
