package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jmylchreest/pixelpad/internal/image"
	"github.com/jmylchreest/pixelpad/internal/pngenc"
	"github.com/jmylchreest/pixelpad/internal/render"
	"github.com/jmylchreest/pixelpad/internal/session"
	"github.com/jmylchreest/pixelpad/internal/settings"
)

// uploadField is the multipart part carrying the source image.
const uploadField = "file"

// parseForm reads a urlencoded or multipart body into r.PostForm. On failure
// it writes the error reply itself and returns false.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	limit := s.cfg.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(limit)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return false
	}
	s.logger.Debug("rejected form", "error", err)
	writeError(w, http.StatusBadRequest, "invalid form")
	return false
}

// formInt parses an optional integer field. Blank and non-numeric values
// count as absent.
func formInt(form url.Values, key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(form.Get(key)))
	if err != nil {
		return 0, false
	}
	return v, true
}

// readUpload returns the bytes of the uploaded image, or nil when none was sent.
func readUpload(r *http.Request) ([]byte, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[uploadField]) == 0 {
		return nil, nil
	}
	f, err := r.MultipartForm.File[uploadField][0].Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}

// processOptions turns a processing form and optional upload into session
// options. It returns a client-facing message when the form is unusable.
// Form dimensions are not checked when a PNG upload supplies the size.
func (s *Server) processOptions(form url.Values, upload []byte) (session.CreateOptions, string) {
	opts := session.CreateOptions{
		SettingsFile: strings.TrimSpace(form.Get("settings_file")),
		Upload:       upload,
	}
	if opts.SettingsFile == "" {
		opts.SettingsFile = s.cfg.DefaultSettingsFile
	}
	if err := settings.ValidateName(opts.SettingsFile); err != nil {
		return opts, "invalid settings_file"
	}

	if n, ok := formInt(form, "max_colors"); ok {
		opts.MaxColors = &n
	}

	if _, _, ok := pngenc.DecodeSize(upload); ok {
		return opts, ""
	}

	width, wok := formInt(form, "width")
	height, hok := formInt(form, "height")
	if (wok && width < 0) || (hok && height < 0) {
		return opts, "invalid dimensions"
	}
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return opts, "canvas too large"
	}
	if wok && hok {
		opts.Width, opts.Height = uint32(width), uint32(height)
	}
	return opts, ""
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	upload, err := readUpload(r)
	if err != nil {
		s.logger.Error("failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	if upload != nil {
		if info, err := image.Inspect(upload); err == nil {
			s.logger.Debug("received upload", "format", info.Format, "width", info.Width, "height", info.Height)
		} else {
			s.logger.Debug("received undecodable upload", "bytes", len(upload))
		}
	}

	opts, msg := s.processOptions(r.PostForm, upload)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	width, height := opts.Size()
	if width > math.MaxInt32 || height > math.MaxInt32 ||
		int64(width)*int64(height) > s.cfg.MaxCanvasPixels {
		writeError(w, http.StatusBadRequest, "canvas too large")
		return
	}

	sess := s.sessions.Create(opts)
	s.logger.Info("created session",
		"session", sess.ID,
		"colors", len(sess.DetectedColors),
		"width", sess.Width,
		"height", sess.Height,
		"settings", sess.SettingsFile)
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	res, err := s.dispatcher.Render(r.PostForm.Get("session_id"), r.PostForm.Get("color_id"))
	switch {
	case errors.Is(err, render.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, render.ErrInvalidSession.Error())
		return
	case errors.Is(err, render.ErrInvalidColorID):
		s.logger.Debug("rejected render", "error", err)
		writeError(w, http.StatusBadRequest, render.ErrInvalidColorID.Error())
		return
	case err != nil:
		s.logger.Error("failed to render", "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	sum := sha256.Sum256(res.PNG)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	h := w.Header()
	h.Set("ETag", etag)
	h.Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", "image/png")
	h.Set("Content-Length", strconv.Itoa(len(res.PNG)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.PNG); err != nil {
		s.logger.Debug("failed to write render", "error", err)
	}
}

// etagMatches reports whether an If-None-Match header names etag.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
