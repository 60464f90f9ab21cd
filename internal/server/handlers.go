package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/cvingest/internal/errs"
	"github.com/hyperjump/cvingest/internal/models"
	"github.com/hyperjump/cvingest/internal/pipeline"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// UploadResponse is returned for an accepted upload.
type UploadResponse struct {
	RequestID    string                  `json:"requestId,omitempty"`
	Record       *models.CandidateRecord `json:"record"`
	Valid        bool                    `json:"valid"`
	Violations   []models.Violation      `json:"violations"`
	Completeness float64                 `json:"completeness"`
	CacheHit     bool                    `json:"cacheHit"`
	ContentHash  string                  `json:"contentHash"`
}

// ErrorResponse is returned for a rejected upload.
type ErrorResponse struct {
	RequestID  string             `json:"requestId,omitempty"`
	Error      string             `json:"error"`
	Violations []models.Violation `json:"violations,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = errs.New(errs.ErrFileTooLarge, "upload", "", "")
			s.respondFailure(w, reqID, err, nil)
			return
		}
		s.respondError(w, http.StatusBadRequest, "expected a multipart form with a file field")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "cannot read uploaded file")
		return
	}

	in := pipeline.Input{
		Name:    header.Filename,
		Content: content,
		Overrides: pipeline.Overrides{
			Email:    r.FormValue("email"),
			FullName: r.FormValue("fullName"),
			Phone:    r.FormValue("phone"),
		},
	}
	s.logger.Debug("upload received",
		zap.String("request_id", reqID),
		zap.String("file", header.Filename),
		zap.Int("bytes", len(content)))

	res, err := s.pipe.ProcessBytes(r.Context(), in)
	if err != nil {
		s.respondFailure(w, reqID, err, nil)
		return
	}
	strict, _ := strconv.ParseBool(r.URL.Query().Get("strict"))
	if strict && !res.Validation.Valid {
		s.respondFailure(w, reqID, res.Validation.Err(), res.Validation.Violations)
		return
	}
	violations := res.Validation.Violations
	if violations == nil {
		violations = []models.Violation{}
	}
	s.respondJSON(w, http.StatusOK, UploadResponse{
		RequestID:    reqID,
		Record:       res.Record,
		Valid:        res.Validation.Valid,
		Violations:   violations,
		Completeness: res.Completeness,
		CacheHit:     res.CacheHit,
		ContentHash:  res.Hash,
	})
}

func (s *Server) respondFailure(w http.ResponseWriter, reqID string, err error, violations []models.Violation) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("upload failed", zap.String("request_id", reqID), zap.Error(err))
	} else {
		s.logger.Info("upload rejected", zap.String("request_id", reqID), zap.Error(err))
	}
	s.respondJSON(w, status, ErrorResponse{
		RequestID:  reqID,
		Error:      errs.Reason(err),
		Violations: violations,
	})
}

func (s *Server) handleCacheInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.pipe.Cache().Info(r.Context())
	if err != nil {
		s.logger.Error("cache info failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	n, err := s.pipe.Cache().Clear(r.Context())
	if err != nil {
		s.logger.Error("cache clear failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("cache cleared", zap.Int("removed", n))
	s.respondJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
