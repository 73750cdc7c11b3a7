package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"video-ingest/internal/assets"
	"video-ingest/internal/filesystem"
	"video-ingest/internal/mediatypes"

	"github.com/gorilla/mux"
)

// uploadField is the multipart field carrying the video.
const uploadField = "video"

// Upload streams the multipart "video" part into the ingest pipeline and
// answers once probing and every tier have finished.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	part, err := findFilePart(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer part.Close()

	asset, err := h.assets.Upload(r.Context(), part.FileName(), part)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary := asset.Summary()
	writeJSONStatus(w, struct {
		ID         string            `json:"id"`
		Metadata   *assets.Metadata  `json:"metadata"`
		Renditions assets.Renditions `json:"renditions"`
		State      assets.State      `json:"state"`
	}{summary.ID, summary.Metadata, summary.Renditions, summary.State})
}

// findFilePart advances the multipart stream to the upload field without
// buffering earlier parts to disk.
func findFilePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, assets.Validationf("expected a multipart/form-data upload")
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, assets.Validationf("no file uploaded")
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, assets.Validationf("malformed multipart body")
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}
		if part.FileName() == "" {
			part.Close()
			return nil, assets.Validationf("no file selected")
		}
		return part, nil
	}
}

// ListVideos returns every committed asset.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	list, err := h.assets.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]assets.Summary, 0, len(list))
	for i := range list {
		out = append(out, list[i].Summary())
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONStatus(w, out)
}

// GetVideo returns a single asset.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONStatus(w, asset.Summary())
}

// DeleteVideo removes an asset and all of its files.
func (h *Handlers) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.assets.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("Deleted asset %s", id)
	writeJSONStatus(w, map[string]string{"message": "video deleted"})
}

// ServeFile streams an original, rendition or poster with Range support.
func (h *Handlers) ServeFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, file := vars["id"], vars["file"]

	path, err := h.assets.ResolveFile(id, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.writeError(w, r, assets.NotFound("file", id+"/"+file))
			return
		}
		h.writeError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		h.writeError(w, r, assets.NotFound("file", id+"/"+file))
		return
	}

	w.Header().Set("Content-Type", mediatypes.ContentType(filepath.Base(path)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, "", info.ModTime(), f)
}
