package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// dashboardOrigins are the local front ends allowed to call the API.
var dashboardOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

// API exposes run progress and the finished dataset over HTTP.
type API struct {
	run *RunContext
	hub *Hub
	log *zap.Logger

	mu      sync.RWMutex
	dataset *Dataset
}

// NewAPI returns an API reporting on run and streaming events from hub.
func NewAPI(run *RunContext, hub *Hub, log *zap.Logger) *API {
	return &API{run: run, hub: hub, log: log}
}

// SetDataset publishes the assembled dataset.
func (a *API) SetDataset(ds *Dataset) {
	a.mu.Lock()
	a.dataset = ds
	a.mu.Unlock()
}

// Handler builds the router with CORS applied.
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", a.hub.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/pokemon", a.handleGetPokemon).Methods(http.MethodGet)
	api.HandleFunc("/progress", a.handleGetProgress).Methods(http.MethodGet)
	api.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   dashboardOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (a *API) handleGetPokemon(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	ds := a.dataset
	a.mu.RUnlock()
	if ds == nil {
		ds = &Dataset{Records: []*EntityRecord{}}
	}
	a.writeJSON(w, http.StatusOK, ds)
}

func (a *API) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.run.Snapshot())
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("Encode response", zap.Error(err))
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (a *API) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
