package app

import (
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/db"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/security"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Host:     config.HostConfig{CORS: []string{"http://localhost:3000"}},
		JWT:      config.JWTConfig{Secret: "test-secret", Algorithm: "HS256", Expire: 30 * time.Minute},
		Upload:   config.UploadConfig{MaxSize: 1 << 20},
		Security: config.SecurityConfig{RateLimit: 1000},
	}

	gdb, err := db.New(config.DatabaseConfig{Driver: "sqlite", URL: ":memory:"})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	revoker := security.NewMemoryRevoker()
	t.Cleanup(func() { revoker.Close() })

	sessions, err := security.NewSessions(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.Expire, revoker)
	require.NoError(t, err)

	blobs := storage.NewLocalFs(afero.NewMemMapFs())
	argon := &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

	d := &internal.Deps{
		Config:   cfg,
		DB:       gdb,
		Blobs:    blobs,
		Sessions: sessions,
		Accounts: service.NewAccounts(gdb, argon, 0),
		Tree:     service.NewTree(gdb, blobs, false),
		Uploader: service.NewUploader(gdb, blobs),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testServer{t: t, router: Routes(ctx, d)}
}

func (s *testServer) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *testServer) json(method, path, token string, payload any) *httptest.ResponseRecorder {
	s.t.Helper()

	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(b)
	}

	return s.do(method, path, token, body, "application/json")
}

func (s *testServer) upload(token, name, content string, folderID string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", name)
	require.NoError(s.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(s.t, err)

	if folderID != "" {
		require.NoError(s.t, mw.WriteField("folder_id", folderID))
	}
	require.NoError(s.t, mw.Close())

	return s.do(http.MethodPost, "/files/upload", token, &buf, mw.FormDataContentType())
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()

	w := s.json(http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(s.t, w, &body)
	require.Equal(s.t, "bearer", body.TokenType)

	return body.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type entity struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Size      int64   `json:"size"`
	FolderID  *string `json:"folder_id"`
	IsStarred bool    `json:"is_starred"`
	IsTrashed bool    `json:"is_trashed"`
}

func listNames(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var items []entity
	decode(t, w, &items)

	out := []string{}
	for _, it := range items {
		out = append(out, it.Name)
	}

	return out
}

func TestScenario(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "name": "A", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "name": "A2", "password": "pw2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Email already registered")

	token := s.login("a@x.com", "pw1")

	w = s.json(http.MethodPost, "/folders/create", token, gin.H{"name": "Docs", "parent_id": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var docs entity
	decode(t, w, &docs)

	w = s.upload(token, "a.txt", "hello world", docs.ID)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var file entity
	decode(t, w, &file)
	assert.Equal(t, int64(len("hello world")), file.Size)
	require.NotNil(t, file.FolderID)
	assert.Equal(t, docs.ID, *file.FolderID)

	assert.Equal(t, []string{"a.txt"}, listNames(t, s.json(http.MethodGet, "/files/list?folder_id="+docs.ID, token, nil)))

	w = s.json(http.MethodDelete, "/files/"+file.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, listNames(t, s.json(http.MethodGet, "/files/list?folder_id="+docs.ID, token, nil)))

	w = s.json(http.MethodPut, "/files/"+file.ID+"/restore", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"a.txt"}, listNames(t, s.json(http.MethodGet, "/files/list?folder_id="+docs.ID, token, nil)))
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "name": "A", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)

	wrong := s.json(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	unknown := s.json(http.MethodPost, "/auth/login", "", gin.H{"email": "b@x.com", "password": "pw1"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Contains(t, wrong.Body.String(), "Incorrect email or password")
	assert.Contains(t, unknown.Body.String(), "Incorrect email or password")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/files/list", "/folders/list", "/auth/me"} {
		w := s.json(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = s.json(http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestMeAndLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "name": "A", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	token := s.login("a@x.com", "pw1")

	w = s.json(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	decode(t, w, &me)
	assert.Equal(t, "a@x.com", me.Email)
	assert.Equal(t, "A", me.Name)

	w = s.json(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOwnershipIsolation(t *testing.T) {
	s := newTestServer(t)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		w := s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": email, "name": "U", "password": "pw1"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	a := s.login("a@x.com", "pw1")
	b := s.login("b@x.com", "pw1")

	w := s.json(http.MethodPost, "/folders/create", b, gin.H{"name": "Private"})
	require.Equal(t, http.StatusOK, w.Code)
	var private entity
	decode(t, w, &private)

	w = s.json(http.MethodPost, "/folders/create", a, gin.H{"name": "Sneaky", "parent_id": private.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(http.MethodGet, "/folders/"+private.ID, a, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.upload(a, "x.txt", "x", private.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(http.MethodDelete, "/folders/"+private.ID+"/permanent", a, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Empty(t, listNames(t, s.json(http.MethodGet, "/folders/list", a, nil)))
	assert.Equal(t, []string{"Private"}, listNames(t, s.json(http.MethodGet, "/folders/list?parent_id=null", b, nil)))
}

func TestFolderEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "name": "A", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	token := s.login("a@x.com", "pw1")

	w = s.json(http.MethodPost, "/folders/create", token, gin.H{"name": "Top"})
	require.Equal(t, http.StatusOK, w.Code)
	var top entity
	decode(t, w, &top)

	w = s.json(http.MethodPost, "/folders/create", token, gin.H{"name": "Sub", "parent_id": top.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var sub entity
	decode(t, w, &sub)

	// Cycles are refused
	w = s.json(http.MethodPut, "/folders/"+top.ID, token, gin.H{"name": "Top", "parent_id": sub.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPut, "/folders/"+sub.ID+"/star", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Sub"}, listNames(t, s.json(http.MethodGet, "/folders/starred", token, nil)))

	w = s.json(http.MethodDelete, "/folders/"+top.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Top"}, listNames(t, s.json(http.MethodGet, "/folders/trash", token, nil)))
	assert.Empty(t, listNames(t, s.json(http.MethodGet, "/folders/list", token, nil)))

	w = s.json(http.MethodPut, "/folders/"+top.ID+"/restore", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodPut, "/folders/"+top.ID+"/restore", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(http.MethodDelete, "/folders/"+top.ID+"/permanent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/folders/"+sub.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFileEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodPost, "/auth/signup", "", gin.H{"email": "a@x.com", "name": "A", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code)
	token := s.login("a@x.com", "pw1")

	w = s.upload(token, "notes.txt", "remember the milk", "null")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var file entity
	decode(t, w, &file)
	assert.Nil(t, file.FolderID)

	w = s.json(http.MethodGet, "/files/"+file.ID+"/download", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "remember the milk", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "notes.txt")

	w = s.json(http.MethodPut, "/files/"+file.ID, token, gin.H{"name": "todo.txt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"todo.txt"}, listNames(t, s.json(http.MethodGet, "/files/recent", token, nil)))

	w = s.json(http.MethodPut, "/files/"+file.ID+"/star", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var star struct {
		IsStarred bool `json:"is_starred"`
	}
	decode(t, w, &star)
	assert.True(t, star.IsStarred)

	w = s.json(http.MethodGet, "/files/usage", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var usage struct {
		UsedStorage   int64 `json:"used_storage"`
		UploadedFiles int   `json:"uploaded_files"`
	}
	decode(t, w, &usage)
	assert.Equal(t, int64(len("remember the milk")), usage.UsedStorage)
	assert.Equal(t, 1, usage.UploadedFiles)

	w = s.json(http.MethodDelete, "/files/"+file.ID+"/permanent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/files/"+file.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/files/upload", token, bytes.NewReader(nil), "multipart/form-data; boundary=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t)

	w := s.json(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = s.do(http.MethodHead, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
