package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/primizht/materials/pkg/materials"
)

// Handler serves the materials HTTP API.
type Handler struct {
	service   materials.Service
	creds     Credentials
	maxUpload int64
}

// NewHandler creates a handler around the material service. maxUpload bounds
// request bodies on the upload endpoint; zero applies the service default.
func NewHandler(service materials.Service, creds Credentials, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = materials.DefaultMaxUploadSize
	}
	return &Handler{
		service:   service,
		creds:     creds,
		maxUpload: maxUpload,
	}
}

// Routes returns the router for the materials endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", h.Ping)
	r.Get("/api/materials", h.ListMaterials)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.creds))
		r.Post("/api/upload", h.Upload)
		r.Put("/api/edit/{id}", h.Edit)
		r.Delete("/api/delete/{id}", h.Delete)
	})

	return r
}

// Ping answers uptime probes (the hosting platform idles the service out
// without them).
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Pong! I am awake."))
}

// ListMaterials returns the full id-keyed materials collection.
func (h *Handler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("Failed to list materials", "err", err)
		renderError(w, r, http.StatusInternalServerError, "server error")
		return
	}

	render.JSON(w, r, list)
}

// Upload creates a material from a multipart form: title, category and
// either textContent (isTextPost=true) or a file part.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			renderError(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		renderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := materials.CreateMaterialRequest{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		IsText:      r.FormValue("isTextPost") == "true",
		TextContent: r.FormValue("textContent"),
	}

	if !req.IsText {
		// A missing file part surfaces as ErrMissingFile from the service.
		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(file)
			if err != nil {
				slog.Error("Failed to read upload", "err", err)
				renderError(w, r, http.StatusInternalServerError, "server error")
				return
			}
			req.FileName = header.Filename
			req.Data = data
		}
	}

	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, materials.ErrMissingFile):
			renderError(w, r, http.StatusBadRequest, "no file provided")
		case errors.Is(err, materials.ErrFileTooLarge):
			renderError(w, r, http.StatusRequestEntityTooLarge, "file too large")
		default:
			slog.Error("Failed to create material", "err", err)
			renderError(w, r, http.StatusInternalServerError, "server error")
		}
		return
	}

	render.JSON(w, r, m)
}

// EditMaterialRequest is the JSON body of the edit endpoint.
type EditMaterialRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Content  string `json:"content,omitempty"`
}

// Edit updates title, category and (when provided) text content.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body EditMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.service.Update(r.Context(), id, materials.UpdateMaterialRequest{
		Title:    body.Title,
		Category: body.Category,
		Content:  body.Content,
	})
	if err != nil {
		if errors.Is(err, materials.ErrMaterialNotFound) {
			renderError(w, r, http.StatusNotFound, "not found")
			return
		}
		slog.Error("Failed to update material", "id", id, "err", err)
		renderError(w, r, http.StatusInternalServerError, "server error")
		return
	}

	render.JSON(w, r, map[string]bool{"success": true})
}

// Delete removes a material record and best-effort deletes its blob.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete material", "id", id, "err", err)
		renderError(w, r, http.StatusInternalServerError, "server error")
		return
	}

	render.JSON(w, r, map[string]bool{"success": true})
}
