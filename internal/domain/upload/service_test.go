package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventphotos/internal/domain/photo"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0"), bytes.Repeat([]byte{0}, 64)...)
)

type countingNotifier struct{ n int }

func (c *countingNotifier) PhotosChanged() { c.n++ }

func setupUploadRouter(t *testing.T, maxSize int64) (*gin.Engine, string, *countingNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := filepath.Join(t.TempDir(), "uploads")
	notifier := &countingNotifier{}
	svc := NewService(photo.NewStore(dir, nil), photo.StaticURLResolver("/static/uploads"), maxSize, notifier, nil)

	r := gin.New()
	RegisterRoutes(r, NewHandler(svc))
	return r, dir, notifier
}

func postFile(t *testing.T, r http.Handler, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	PhotoURL string `json:"photo_url"`
	Error    string `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) uploadResponse {
	t.Helper()
	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestUpload_StoresSanitisedName(t *testing.T) {
	r, dir, notifier := setupUploadRouter(t, 0)

	w := postFile(t, r, "photo", "My Party Pic!.PNG", pngBytes)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "My_Party_Pic.png", resp.Filename)
	assert.Equal(t, "/static/uploads/My_Party_Pic.png", resp.PhotoURL)
	assert.Equal(t, 1, notifier.n)

	data, err := os.ReadFile(filepath.Join(dir, resp.Filename))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestUpload_ExtensionFollowsContent(t *testing.T) {
	r, dir, _ := setupUploadRouter(t, 0)

	resp := decode(t, postFile(t, r, "photo", "disguised.png", jpegBytes))
	assert.Equal(t, "disguised.jpg", resp.Filename)

	resp = decode(t, postFile(t, r, "photo", "kept.JPEG", jpegBytes))
	assert.Equal(t, "kept.jpeg", resp.Filename)

	resp = decode(t, postFile(t, r, "photo", "animated.gif", pngBytes))
	assert.Equal(t, "animated.png", resp.Filename)

	names, err := photo.NewStore(dir, nil).Filenames(photo.SortByName)
	require.NoError(t, err)
	assert.Equal(t, []string{"animated.png", "disguised.jpg", "kept.jpeg"}, names)
}

func TestMatchExtension(t *testing.T) {
	assert.Equal(t, "a.jpg", matchExtension("a.png", "image/jpeg"))
	assert.Equal(t, "a.jpeg", matchExtension("a.jpeg", "image/jpeg"))
	assert.Equal(t, "a.webp", matchExtension("a.gif", "image/webp"))
	assert.Equal(t, "a.png", matchExtension("a.png", "image/png"))
}

func TestUpload_CollisionGetsSuffix(t *testing.T) {
	r, dir, _ := setupUploadRouter(t, 0)

	first := decode(t, postFile(t, r, "photo", "same.png", pngBytes))
	second := decode(t, postFile(t, r, "photo", "same.png", pngBytes))

	assert.Equal(t, "same.png", first.Filename)
	assert.NotEqual(t, first.Filename, second.Filename)
	assert.Regexp(t, `^same_[0-9a-f]{8}\.png$`, second.Filename)

	names, err := photo.NewStore(dir, nil).Filenames(photo.SortByName)
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestUpload_Rejections(t *testing.T) {
	r, _, notifier := setupUploadRouter(t, 32)

	w := postFile(t, r, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFile(t, r, "photo", "notes.png", []byte("just some text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrInvalidMimeType.Error(), decode(t, w).Error)

	w = postFile(t, r, "photo", "empty.png", []byte{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postFile(t, r, "photo", "big.png", pngBytes)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	assert.Equal(t, 0, notifier.n)
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in, ext, want string
	}{
		{"holiday.jpg", ".jpg", "holiday.jpg"},
		{"../../etc/passwd", ".png", "passwd.png"},
		{`C:\Users\me\IMG 0001.JPEG`, ".jpg", "IMG_0001.jpeg"},
		{"???.gif", ".gif", "photo.gif"},
		{"scan.heic", ".jpg", "scan.jpg"},
		{"", ".webp", "photo.webp"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeName(tc.in, tc.ext), tc.in)
	}
}
