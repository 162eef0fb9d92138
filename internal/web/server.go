// Package web serves the browser front-end and the JSON API that drives the
// session controller.
package web

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"

	"artlens-pro/internal/artstyle"
	"artlens-pro/internal/session"
	"artlens-pro/internal/upload"
)

//go:embed static/*
var staticFS embed.FS

const ResultFilename = "artlens-pro-result.png"

type Options struct {
	Controller *session.Controller
	Validator  upload.Validator
	Logger     zerolog.Logger

	// CredentialConfigured lets the page show the missing-key banner before the
	// first generate attempt.
	CredentialConfigured bool
}

type Server struct {
	ctrl          *session.Controller
	validator     upload.Validator
	logger        zerolog.Logger
	hasCredential bool
	upgrader      websocket.Upgrader

	quit     chan struct{}
	quitOnce sync.Once
}

type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func New(opts Options) *Server {
	return &Server{
		ctrl:          opts.Controller,
		validator:     opts.Validator,
		logger:        opts.Logger,
		hasCredential: opts.CredentialConfigured,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 << 10,
		},
		quit: make(chan struct{}),
	}
}

// Close ends open websocket streams. http.Server.Shutdown does not track
// hijacked connections.
func (s *Server) Close() {
	s.quitOnce.Do(func() { close(s.quit) })
}

func (s *Server) Handler() (http.Handler, error) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()
	r.Use(s.withRequestID, s.withLogging)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(withGzip)
	api.HandleFunc("/styles", s.handleStyles).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/prompt", s.handlePrompt).Methods(http.MethodGet)
	api.HandleFunc("/image", s.handleImage).Methods(http.MethodPost)
	api.HandleFunc("/settings", s.handleSettings).Methods(http.MethodPut)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	api.HandleFunc("/error", s.handleDismissError).Methods(http.MethodDelete)
	api.HandleFunc("/result", s.handleResult).Methods(http.MethodGet)

	r.PathPrefix("/").Handler(gzhttp.GzipHandler(http.FileServer(http.FS(staticSub))))

	return r, nil
}

type stateView struct {
	Phase                session.Phase `json:"phase"`
	OriginalImage        string        `json:"originalImage,omitempty"`
	GeneratedImage       string        `json:"generatedImage,omitempty"`
	Style                artstyle.ID   `json:"style"`
	Intensity            int           `json:"intensity"`
	Band                 string        `json:"band"`
	Prompt               string        `json:"prompt"`
	IsGenerating         bool          `json:"isGenerating"`
	CanGenerate          bool          `json:"canGenerate"`
	LastError            string        `json:"lastError,omitempty"`
	ErrorKind            string        `json:"errorKind,omitempty"`
	CredentialConfigured bool          `json:"credentialConfigured"`
	Seq                  uint64        `json:"seq"`
}

func (s *Server) view(st session.State) stateView {
	return stateView{
		Phase:                st.Phase(),
		OriginalImage:        st.OriginalImage,
		GeneratedImage:       st.GeneratedImage,
		Style:                st.Style,
		Intensity:            st.Intensity,
		Band:                 artstyle.Band(st.Intensity).String(),
		Prompt:               artstyle.BuildPrompt(artstyle.Lookup(st.Style), st.Intensity),
		IsGenerating:         st.IsGenerating,
		CanGenerate:          st.CanGenerate(),
		LastError:            st.LastError,
		ErrorKind:            string(st.ErrorKind),
		CredentialConfigured: s.hasCredential,
		Seq:                  st.Seq,
	}
}

func withGzip(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
