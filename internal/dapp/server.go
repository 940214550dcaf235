package dapp

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

//go:embed templates/home.html
var templates embed.FS

var homeTmpl = template.Must(template.ParseFS(templates, "templates/home.html"))

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server serves the page and its action endpoints.
type Server struct {
	app    *App
	router *mux.Router
	srv    *http.Server
	log    zerolog.Logger
}

// NewServer routes the app on addr.
func NewServer(addr string, app *App) *Server {
	s := &Server{app: app, router: mux.NewRouter(), log: app.log}

	s.router.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	s.router.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/click/{id}", s.handleClick).Methods(http.MethodPost)
	s.router.HandleFunc("/fill/{id}", s.handleFill).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", app.Metrics().Handler()).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.srv.Addr).Msg("Serving dApp")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homeTmpl.Execute(w, s.app.State()); err != nil {
		s.log.Error().Err(err).Msg("Rendering page failed")
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.app.State())
}

// handleClick accepts both the page's own form posts, which redirect back
// to the page, and API calls, which get the state as JSON.
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form := isFormPost(r)

	if form {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid form body")
			return
		}
		for _, field := range []string{IDRecipientInput, IDAmountInput} {
			if v, ok := r.PostForm[field]; ok {
				_ = s.app.Fill(field, v[0])
			}
		}
	}

	if err := s.app.Click(id); err != nil {
		writeError(w, http.StatusNotFound, "unknown_element", "No clickable element #"+id)
		return
	}

	if form {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusAccepted, s.app.State())
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var value string
	if isFormPost(r) {
		value = r.PostFormValue("value")
	} else {
		var body struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
			return
		}
		value = body.Value
	}

	if err := s.app.Fill(id, value); err != nil {
		writeError(w, http.StatusNotFound, "unknown_element", "No input #"+id)
		return
	}
	writeJSON(w, http.StatusOK, s.app.State())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}

func isFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
