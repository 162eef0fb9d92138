package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"artlens-pro/internal/artstyle"
	"artlens-pro/internal/datauri"
	"artlens-pro/internal/upload"
)

// multipartSlack covers form boundaries and headers around the file itself.
const multipartSlack = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"credentialConfigured": s.hasCredential,
		"maxUploadBytes":       s.validator.Limit(),
	})
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"styles":           artstyle.All(),
		"bands":            artstyle.Bands(),
		"defaultStyle":     artstyle.DefaultID,
		"defaultIntensity": artstyle.DefaultIntensity,
		"maxUploadBytes":   s.validator.Limit(),
		"maxUploadLabel":   upload.FormatLimit(s.validator.Limit()),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.ctrl.Snapshot()))
}

type promptResponse struct {
	Style     artstyle.ID `json:"style"`
	Intensity int         `json:"intensity"`
	Band      string      `json:"band"`
	Prompt    string      `json:"prompt"`
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Snapshot()
	style, intensity := st.Style, st.Intensity

	if raw := strings.TrimSpace(r.URL.Query().Get("style")); raw != "" {
		id, ok := artstyle.ParseID(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown style"})
			return
		}
		style = id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("intensity")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "intensity must be an integer"})
			return
		}
		intensity = artstyle.ClampIntensity(v)
	}

	writeJSON(w, http.StatusOK, promptResponse{
		Style:     style,
		Intensity: intensity,
		Band:      artstyle.Band(intensity).String(),
		Prompt:    artstyle.BuildPrompt(artstyle.Lookup(style), intensity),
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	maxBytes := s.validator.Limit()

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeInvalidFile(w, &upload.InvalidFileError{Reason: upload.TooLarge, Limit: maxBytes})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read image"})
		return
	}

	blob, err := s.validator.Validate(data, header.Header.Get("Content-Type"))
	if err != nil {
		var invalid *upload.InvalidFileError
		if errors.As(err, &invalid) {
			logger.Info().Err(err).Str("filename", header.Filename).Int("bytes", len(data)).Msg("upload rejected")
			s.writeInvalidFile(w, invalid)
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	st, err := s.ctrl.SelectImage(datauri.Encode(blob))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	logger.Info().Str("mime", blob.MimeType).Int("bytes", len(blob.Data)).Msg("image selected")
	writeJSON(w, http.StatusOK, s.view(st))
}

func (s *Server) writeInvalidFile(w http.ResponseWriter, err *upload.InvalidFileError) {
	writeJSON(w, http.StatusBadRequest, apiError{Error: err.Message(), Kind: "invalid_input_file"})
}

type settingsRequest struct {
	Style     *string `json:"style"`
	Intensity *int    `json:"intensity"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	var id artstyle.ID
	if req.Style != nil {
		parsed, ok := artstyle.ParseID(*req.Style)
		if !ok {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown style"})
			return
		}
		id = parsed
	}

	st := s.ctrl.Snapshot()
	if req.Style != nil {
		var err error
		if st, err = s.ctrl.SetStyle(id); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
	}
	if req.Intensity != nil {
		st = s.ctrl.SetIntensity(*req.Intensity)
	}

	writeJSON(w, http.StatusOK, s.view(st))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ctrl.Generate(r.Context()); !ok {
		st := s.ctrl.Snapshot()
		msg := "generation already in progress"
		if !st.HasImage() {
			msg = "no image selected"
		}
		writeJSON(w, http.StatusConflict, apiError{Error: msg})
		return
	}
	writeJSON(w, http.StatusAccepted, s.view(s.ctrl.Snapshot()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.ctrl.Reset()))
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.ctrl.DismissError()))
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	blob, ok := s.ctrl.Result()
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "no generated image"})
		return
	}

	w.Header().Set("content-type", "image/png")
	w.Header().Set("content-disposition", `attachment; filename="`+ResultFilename+`"`)
	w.Header().Set("content-length", strconv.Itoa(len(blob.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
