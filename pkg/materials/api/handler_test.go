package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/primizht/materials/pkg/materials"
	"github.com/primizht/materials/pkg/materials/repo/memory"
	memorystorage "github.com/primizht/materials/pkg/materials/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Login: "admin", Password: "secret"}

func setupHandlerTest(t *testing.T) (*Handler, materials.Repository) {
	t.Helper()

	repo := memory.New()
	svc, err := materials.New(
		materials.WithRepository(repo),
		materials.WithBlobStore(memorystorage.New()),
	)
	require.NoError(t, err)

	return NewHandler(svc, testCreds, 0), repo
}

func authorize(req *http.Request) {
	req.Header.Set("Authorization", "admin:secret")
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestPing(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pong! I am awake.", w.Body.String())
}

func TestListMaterialsEmpty(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/materials", nil)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "{}", w.Body.String())
}

func TestUploadRequiresAuth(t *testing.T) {
	handler, repo := setupHandlerTest(t)

	body, contentType := multipartBody(t, map[string]string{
		"title": "T", "category": "C", "isTextPost": "true", "textContent": "Body",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "a rejected request must not create a record")
}

func TestUploadTextPost(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	body, contentType := multipartBody(t, map[string]string{
		"title": "T", "category": "C", "isTextPost": "true", "textContent": "Body",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var m materials.Material
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "text", m.Type)
	assert.Equal(t, "Body", m.Content)
	assert.Empty(t, m.URL)
}

func TestUploadFile(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	body, contentType := multipartBody(t, map[string]string{
		"title": "Отчёт", "category": "история",
	}, "Отчёт.docx", []byte("file content"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var m materials.Material
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "docx", m.Type)
	assert.NotEmpty(t, m.URL)
	assert.NotEmpty(t, m.PublicID)
	assert.True(t, strings.HasSuffix(m.PublicID, ".docx"), "storage name keeps the extension: %q", m.PublicID)
	assert.Empty(t, m.Content)
	assert.Equal(t, materials.CategoryRaw, materials.CategoryForType(m.Type))
}

func TestUploadMissingFile(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	body, contentType := multipartBody(t, map[string]string{
		"title": "T", "category": "C",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditMaterial(t *testing.T) {
	handler, repo := setupHandlerTest(t)

	m := &materials.Material{
		ID:        repo.NewID(),
		Title:     "Old",
		Category:  "old",
		CreatedAt: 1700000000000,
		Type:      materials.TypeText,
		Content:   "body",
	}
	require.NoError(t, repo.Create(context.Background(), m))

	payload, err := json.Marshal(EditMaterialRequest{Title: "New", Category: "new", Content: "edited"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/edit/"+m.ID, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	stored, err := repo.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", stored.Title)
	assert.Equal(t, "edited", stored.Content)
}

func TestEditNotFound(t *testing.T) {
	handler, _ := setupHandlerTest(t)

	req := httptest.NewRequest(http.MethodPut, "/api/edit/missing", strings.NewReader(`{"title":"x","category":"y"}`))
	req.Header.Set("Content-Type", "application/json")
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMaterialTwice(t *testing.T) {
	handler, repo := setupHandlerTest(t)

	m := &materials.Material{
		ID:        repo.NewID(),
		Type:      materials.TypeText,
		Content:   "body",
		CreatedAt: 1700000000000,
	}
	require.NoError(t, repo.Create(context.Background(), m))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/delete/"+m.ID, nil)
		authorize(req)
		w := httptest.NewRecorder()
		handler.Routes().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}
}

// recordingBlobStore captures delete calls for category assertions.
type recordingBlobStore struct {
	deleted []struct {
		publicID string
		category materials.ResourceCategory
	}
}

func (r *recordingBlobStore) Upload(ctx context.Context, data []byte, name string) (*materials.UploadResult, error) {
	return &materials.UploadResult{URL: "fake://" + name, PublicID: name, Format: materials.Extension(name)}, nil
}

func (r *recordingBlobStore) Delete(ctx context.Context, publicID string, category materials.ResourceCategory) error {
	r.deleted = append(r.deleted, struct {
		publicID string
		category materials.ResourceCategory
	}{publicID, category})
	return nil
}

func TestDeleteVideoTargetsVideoCategory(t *testing.T) {
	repo := memory.New()
	store := &recordingBlobStore{}
	svc, err := materials.New(
		materials.WithRepository(repo),
		materials.WithBlobStore(store),
	)
	require.NoError(t, err)
	handler := NewHandler(svc, testCreds, 0)

	m := &materials.Material{
		ID:        repo.NewID(),
		Type:      "mp4",
		URL:       "fake://clip.mp4",
		PublicID:  "clip.mp4",
		CreatedAt: 1700000000000,
	}
	require.NoError(t, repo.Create(context.Background(), m))

	req := httptest.NewRequest(http.MethodDelete, "/api/delete/"+m.ID, nil)
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.deleted, 1)
	assert.Equal(t, "clip.mp4", store.deleted[0].publicID)
	assert.Equal(t, materials.CategoryVideo, store.deleted[0].category)
}

func TestUploadTooLarge(t *testing.T) {
	repo := memory.New()
	svc, err := materials.New(
		materials.WithRepository(repo),
		materials.WithBlobStore(memorystorage.New()),
		materials.WithMaxUploadSize(64),
	)
	require.NoError(t, err)
	handler := NewHandler(svc, testCreds, 1024)

	body, contentType := multipartBody(t, map[string]string{
		"title": "T", "category": "C",
	}, "big.bin", bytes.Repeat([]byte("a"), 512))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestServerErrorHidesDetail(t *testing.T) {
	repo := memory.New()
	svc, err := materials.New(
		materials.WithRepository(repo),
		materials.WithBlobStore(&rejectingBlobStore{}),
	)
	require.NoError(t, err)
	handler := NewHandler(svc, testCreds, 0)

	body, contentType := multipartBody(t, map[string]string{
		"title": "T", "category": "C",
	}, "a.pdf", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	authorize(req)
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "cloud backend exploded", "internal detail must not leak")
	assert.JSONEq(t, `{"error":"server error"}`, w.Body.String())
}

type rejectingBlobStore struct{}

func (r *rejectingBlobStore) Upload(ctx context.Context, data []byte, name string) (*materials.UploadResult, error) {
	return nil, errors.New("cloud backend exploded")
}

func (r *rejectingBlobStore) Delete(ctx context.Context, publicID string, category materials.ResourceCategory) error {
	return nil
}
