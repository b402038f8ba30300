package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"eventphotos/internal/config"
	"eventphotos/internal/domain/live"
	"eventphotos/internal/domain/photo"
	"eventphotos/internal/domain/ranking"
)

const adminPassword = "let-me-in"

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type testApp struct {
	handler http.Handler
	cfg     *config.Config
}

func setupApp(t *testing.T, clearOnDelete bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:               "test",
		HTTPAddr:             "127.0.0.1:0",
		UploadDir:            filepath.Join(root, "uploads"),
		StaticURLBase:        "/static/uploads",
		DataDir:              filepath.Join(root, "data"),
		RecentLaneSize:       10,
		TopLaneSize:          20,
		MaxUploadSize:        1 << 20,
		AdminUsername:        "admin",
		AdminPasswordHash:    string(hash),
		JWTSecret:            "test-secret",
		JWTTTL:               time.Hour,
		LoginRatePerMin:      100,
		RankingClearOnDelete: clearOnDelete,
		ShutdownTimeout:      time.Second,
	}

	photos := photo.NewStore(cfg.UploadDir, nil)
	rankings, err := ranking.NewStore(
		ranking.NewFileRepository(cfg.RankingPath(), nil),
		ranking.DefaultSchema(),
		photos,
		ranking.URLResolver(photo.StaticURLResolver(cfg.StaticURLBase)),
		nil,
	)
	require.NoError(t, err)

	hub := live.NewHub(nil)
	t.Cleanup(hub.Close)

	srv, err := New(Deps{
		Config:     cfg,
		Photos:     photos,
		Identities: photo.NewIdentityMapper(),
		Ranking:    rankings,
		Hub:        hub,
	})
	require.NoError(t, err)
	return &testApp{handler: srv.Handler(), cfg: cfg}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/admin/login", "", map[string]string{
		"username": "admin",
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken
}

// seedPhotos writes photo_01.jpg .. photo_NN.jpg with increasing mod times,
// so photo_NN is the newest.
func (a *testApp) seedPhotos(t *testing.T, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(a.cfg.UploadDir, 0o755))
	base := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		path := filepath.Join(a.cfg.UploadDir, fmt.Sprintf("photo_%02d.jpg", i))
		require.NoError(t, os.WriteFile(path, []byte("jpeg"), 0o644))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mt, mt))
	}
}

func fullRanking(photo3 string) map[string]any {
	cats := make([]map[string]any, 0, 5)
	for i := 1; i <= 5; i++ {
		c := map[string]any{"id": fmt.Sprintf("category_%d", i), "name": ""}
		if i == 1 {
			c["name"] = "Best smile"
			c["photo"] = photo3
		}
		cats = append(cats, c)
	}
	return map[string]any{"categories": cats, "order": []string{"category_1"}}
}

type rankingsResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Photo    *string `json:"photo"`
		PhotoURL *string `json:"photo_url"`
	} `json:"data"`
}

func getRankings(t *testing.T, a *testApp) rankingsResponse {
	t.Helper()
	w := a.do(t, http.MethodGet, "/api/rankings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp rankingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	a := setupApp(t, false)
	w := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUploadThenServeStatic(t *testing.T) {
	a := setupApp(t, false)

	w := a.upload(t, "Party Pic.png", pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		PhotoURL string `json:"photo_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Party_Pic.png", resp.Filename)
	assert.Equal(t, "/static/uploads/"+resp.Filename, resp.PhotoURL)

	w = a.do(t, http.MethodGet, resp.PhotoURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())

	w = a.upload(t, "notes.png", []byte("just some text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoListing_LanesFollowUploadTime(t *testing.T) {
	a := setupApp(t, false)
	a.seedPhotos(t, 12)

	w := a.do(t, http.MethodGet, "/api/photos?sort=recent", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listing photo.ListingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Photos, 12)
	assert.Equal(t, "photo_12.jpg", listing.Photos[0])
	assert.Equal(t, "photo_01.jpg", listing.Photos[11])
	assert.Len(t, listing.RecentPhotos, 10)
	assert.Equal(t, []string{"photo_02.jpg", "photo_01.jpg"}, listing.TopPhotos)
	assert.Equal(t, "/static/uploads/photo_12.jpg", listing.RecentPhotoURLs[0])

	w = a.do(t, http.MethodGet, "/api/photos", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, "photo_01.jpg", listing.Photos[0], "default order is by name")
	assert.Equal(t, "photo_12.jpg", listing.RecentPhotos[0])
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	a := setupApp(t, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/admin/photos"},
		{http.MethodDelete, "/admin/photos/abc"},
		{http.MethodGet, "/admin/ranking"},
		{http.MethodPut, "/admin/ranking"},
	} {
		w := a.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)

		w = a.do(t, tc.method, tc.path, "forged.token.value", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	w := a.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRankingFlow_DeletedPhotoLosesURL(t *testing.T) {
	a := setupApp(t, false)
	a.seedPhotos(t, 12)
	token := a.login(t)

	w := a.do(t, http.MethodPut, "/admin/ranking", token, fullRanking("photo_03.jpg"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ranks := getRankings(t, a)
	require.Len(t, ranks.Data, 5)
	first := ranks.Data[0]
	assert.Equal(t, "category_1", first.ID)
	assert.Equal(t, "Best smile", first.Name)
	require.NotNil(t, first.PhotoURL)
	assert.Equal(t, "/static/uploads/photo_03.jpg", *first.PhotoURL)
	assert.Equal(t, "Category 2", ranks.Data[1].Name)

	w = a.do(t, http.MethodGet, "/admin/photos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []photo.AdminPhoto `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 12)
	assert.Equal(t, "photo_12.jpg", list.Data[0].Filename)

	var id string
	for _, p := range list.Data {
		if p.Filename == "photo_03.jpg" {
			id = p.ID
		}
	}
	require.NotEmpty(t, id)

	w = a.do(t, http.MethodDelete, "/admin/photos/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodDelete, "/admin/photos/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ranks = getRankings(t, a)
	first = ranks.Data[0]
	require.NotNil(t, first.Photo, "reference kept until cleanup")
	assert.Equal(t, "photo_03.jpg", *first.Photo)
	assert.Nil(t, first.PhotoURL)
}

func TestRankingFlow_ClearOnDelete(t *testing.T) {
	a := setupApp(t, true)
	a.seedPhotos(t, 3)
	token := a.login(t)

	w := a.do(t, http.MethodPut, "/admin/ranking", token, fullRanking("photo_03.jpg"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/admin/photos", token, nil)
	var list struct {
		Data []photo.AdminPhoto `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, "photo_03.jpg", list.Data[0].Filename)

	w = a.do(t, http.MethodDelete, "/admin/photos/"+list.Data[0].ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	ranks := getRankings(t, a)
	assert.Nil(t, ranks.Data[0].Photo)
	assert.Nil(t, ranks.Data[0].PhotoURL)
}

func TestRankingUpdate_Validation(t *testing.T) {
	a := setupApp(t, false)
	token := a.login(t)

	w := a.do(t, http.MethodPut, "/admin/ranking", token, map[string]any{"order": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	body := fullRanking("")
	body["categories"] = body["categories"].([]map[string]any)[:4]
	w = a.do(t, http.MethodPut, "/admin/ranking", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = fullRanking("photo_01.jpg")
	body["revision"] = 7
	w = a.do(t, http.MethodPut, "/admin/ranking", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodGet, "/admin/ranking", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"revision":0`))
}
