package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/chiasentiment/Samsonsblog/internal/policy"
	"github.com/chiasentiment/Samsonsblog/internal/storage"
	"github.com/go-chi/chi/v5"
)

const maxImageBytes = 16 << 20

// UploadResponse is returned after a successful image upload; the URL
// goes into the post's image field.
type UploadResponse struct {
	URL string `json:"url"`
}

// ImageHandler stores and serves post header images.
type ImageHandler struct {
	images *storage.ImageStore
}

// NewImageHandler constructs an ImageHandler with the provided store.
func NewImageHandler(images *storage.ImageStore) *ImageHandler {
	return &ImageHandler{images: images}
}

// ImageRouter registers the image routes on the given router.
func ImageRouter(r chi.Router, images *storage.ImageStore) {
	handler := NewImageHandler(images)

	r.Post("/upload", handler.Upload)
	r.Get("/images/{imageKey}", handler.Serve)
}

// Upload stores a header image for the post editor. Admin only; the
// object key is derived from the content hash so re-uploads dedupe.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor := CurrentActor(r.Context())
	if err := policy.RequireAdmin(actor); err != nil {
		if errors.Is(err, policy.ErrForbidden) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxImageBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:8]) + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := h.images.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		log.Printf("store image %s: %v", key, err)
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{URL: "/images/" + key})
}

// Serve streams a stored image back to the browser.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "imageKey")
	if key == "" || strings.ContainsAny(key, "/\\") {
		http.NotFound(w, r)
		return
	}

	object, err := h.images.Get(r.Context(), key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, object); err != nil {
		log.Printf("serve image %s: %v", key, err)
	}
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("uploaded file larger than %d bytes", limit)
	}
	return data, nil
}
