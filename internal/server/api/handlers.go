package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/services"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

func (s *HTTPServer) check(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Success")
}

func (s *HTTPServer) checkCredentials(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

func (s *HTTPServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := principalFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeText(w, http.StatusBadRequest, "Wrong format")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeText(w, http.StatusBadRequest, "Wrong format")
		return
	}
	fh := files[0]

	f, err := fh.Open()
	if err != nil {
		s.logger.Error(ctx, "open multipart file", "error", err)
		writeText(w, http.StatusInternalServerError, "Internal error")
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		s.logger.Error(ctx, "read multipart file", "error", err)
		writeText(w, http.StatusInternalServerError, "Internal error")
		return
	}

	_, err = s.images.Upload(ctx, user, services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, common.ErrorWrongFormat) {
			writeText(w, http.StatusBadRequest, "Wrong format")
			return
		}
		s.logger.Error(ctx, "upload failed", "user", user.Login, "file", fh.Filename, "error", err)
		writeText(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeText(w, http.StatusOK, "Image received")
}

func (s *HTTPServer) listReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeText(w, http.StatusBadRequest, "Bad limit")
			return
		}
		limit = n
	}

	reports, err := s.images.Reports(ctx, principalFrom(ctx), limit)
	if errors.Is(err, common.ErrorForbidden) {
		writeText(w, http.StatusForbidden, "Forbidden")
		return
	}
	if err != nil {
		s.logger.Error(ctx, "list reports failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		s.logger.Warn(ctx, "write reports", "error", err)
	}
}
