package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

func SetupHealthEndpoint(router *mux.Router) {
	router.HandleFunc("/health", HandleHealth).Methods("GET")
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		log.Printf("❌ Failed to write health check response: %v", err)
	}
}
