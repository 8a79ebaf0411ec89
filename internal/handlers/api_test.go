package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inkwell/internal/auth"
	"inkwell/internal/avatar"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// captureMailer records reset mail instead of delivering it.
type captureMailer struct {
	mu   sync.Mutex
	sent int
	to   string
	link string
}

func (m *captureMailer) SendPasswordReset(to, resetLink string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent++
	m.to = to
	m.link = resetLink
	return nil
}

func (m *captureMailer) last() (sent int, to, link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent, m.to, m.link
}

const testBaseURL = "http://inkwell.test"

func newTestServer(t *testing.T) (*httptest.Server, *captureMailer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.db")
	database, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&models.User{}, &models.Post{}))

	st := store.New(database)
	hasher := auth.NewHasher(bcrypt.MinCost)
	tokens := auth.NewTokens("test-secret", 12*time.Hour, 720*time.Hour, 30*time.Minute)

	avatars, err := avatar.NewDisk(t.TempDir())
	require.NoError(t, err)

	mail := &captureMailer{}
	api, err := New(st, auth.NewService(st.Users, hasher), tokens, avatars, mail, nil, Config{
		BaseURL: testBaseURL,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(api.Routes())
	t.Cleanup(srv.Close)
	return srv, mail
}

// newClient returns a cookie-carrying client that surfaces redirects instead
// of following them.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postJSON(t *testing.T, c *http.Client, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := c.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerUser(t *testing.T, c *http.Client, base, username, email, password string) map[string]any {
	t.Helper()
	resp := postJSON(t, c, base+"/register", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
		"confirm":  password,
	})
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register %s: %v", username, body)
	return body
}

func loginUser(t *testing.T, c *http.Client, base, email, password string) map[string]any {
	t.Helper()
	resp := postJSON(t, c, base+"/login", map[string]any{
		"email":    email,
		"password": password,
	})
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, "login %s: %v", email, body)
	return body
}

// signUp registers and logs in on the same client.
func signUp(t *testing.T, c *http.Client, base, username, email, password string) {
	t.Helper()
	registerUser(t, c, base, username, email, password)
	loginUser(t, c, base, email, password)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// multipartForm builds an account-update form with an optional file part.
func multipartForm(t *testing.T, fields map[string]string, fileField, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp := get(t, c, srv.URL+path)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
