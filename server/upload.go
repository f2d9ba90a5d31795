package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const (
	uploadSuccessMessage = "File uploaded successfully"

	msgNoFile       = "No files were uploaded."
	msgUploadFailed = "An error occurred while uploading the file"
)

type uploadResult struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// upload stores a multipart file under the uploads directory keyed by its
// original filename. Collisions overwrite, as the source system did.
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile, err)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, msgNoFile, nil)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, msgUploadFailed, err)
		return
	}

	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgUploadFailed, err)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, msgUploadFailed, err)
		return
	}

	writeSuccess(w, uploadResult{
		Name: name,
		Path: "/uploads/" + name,
		Size: size,
	}, uploadSuccessMessage)
}
