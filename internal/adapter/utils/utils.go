package utils

import (
	"sync"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var once sync.Once
var router *chi.Mux

func GetNewUUID() string {
	return uuid.New().String()
}

type RouterClient struct {
	Router *chi.Mux
}

// GetRouter builds the process-wide mux exactly once. Panic recovery comes
// from chi so a handler bug surfaces as a 500 instead of killing the server.
// The metrics endpoint stays outside the service middleware chain.
func GetRouter() RouterClient {
	once.Do(func() {
		router = chi.NewRouter()
		router.Use(chimiddleware.Recoverer)
		router.Handle("/metrics", promhttp.Handler())
	})

	return RouterClient{Router: router}
}
