package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneminute/oneminute-go/internal/crypto"
	"github.com/oneminute/oneminute-go/internal/model"
	"github.com/oneminute/oneminute-go/internal/service"
	"github.com/oneminute/oneminute-go/internal/session"
)

const testSecret = "test-secret"

type okClipboard struct{}

func (okClipboard) WriteText(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	sessions := service.NewSessionService(session.NewRegistry(time.Minute), nil, service.SessionConfig{
		Clipboard:   okClipboard{},
		AckDelay:    time.Minute,
		TokenSecret: testSecret,
		TokenExpiry: time.Hour,
	})

	return NewRouter(Routes{
		Generator:   NewGeneratorHandler(service.NewGeneratorService(service.BuiltinDefaults())),
		Sessions:    NewSessionHandler(sessions),
		Events:      NewEventsHandler(sessions, nil),
		TokenSecret: testSecret,
	})
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func createSession(t *testing.T, h http.Handler, body string) model.CreateSessionResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/sessions", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[model.CreateSessionResponse](t, rec)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleGenerate(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLen    int
	}{
		{"empty body uses defaults", "", http.StatusOK, 14},
		{"explicit length", `{"length": 20}`, http.StatusOK, 20},
		{"all classes off", `{"length": 8, "uppercase": false, "lowercase": false, "numbers": false, "symbols": false}`, http.StatusOK, 8},
		{"too short", `{"length": 3}`, http.StatusBadRequest, 0},
		{"too long", `{"length": 64}`, http.StatusBadRequest, 0},
		{"bad json", `{"length":`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/generate", "", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				body := decode[map[string]string](t, rec)
				assert.NotEmpty(t, body["error"])
				return
			}
			resp := decode[model.GenerateResponse](t, rec)
			assert.Len(t, resp.Password, tt.wantLen)
			assert.Equal(t, tt.wantLen, resp.Length)
		})
	}
}

func TestHandleGenerate_BodyTooLarge(t *testing.T) {
	body := `{"length": 14, "pad": "` + strings.Repeat("x", 2<<20) + `"}`
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/v1/generate", "", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleStrength(t *testing.T) {
	rec := do(t, newTestRouter(t), http.MethodPost, "/api/v1/strength", "",
		`{"length": 14}`)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[crypto.Strength](t, rec)
	assert.Equal(t, crypto.Strength{Score: 6, Rating: crypto.RatingGood, Width: "75%", Color: "blue"}, got)
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestRouter(t)
	created := createSession(t, h, `{"length": 12}`)
	assert.Equal(t, 12, created.Session.Length)
	assert.True(t, created.Session.Visible)

	rec := do(t, h, http.MethodGet, "/api/v1/session", created.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.SessionResponse](t, rec)
	assert.Equal(t, created.Session.Password, got.Password)

	rec = do(t, h, http.MethodPut, "/api/v1/session/length", created.Token, `{"length": 30}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[model.SessionResponse](t, rec)
	assert.Len(t, got.Password, 30)

	rec = do(t, h, http.MethodPut, "/api/v1/session/length", created.Token, `{"length": 2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/session/options", created.Token, `{"symbols": false, "numbers": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[model.SessionResponse](t, rec)
	assert.Equal(t, crypto.Options{Uppercase: true, Lowercase: true}, got.Options)

	rec = do(t, h, http.MethodPost, "/api/v1/session/options/numbers/toggle", created.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[model.SessionResponse](t, rec)
	assert.True(t, got.Options.Numbers)

	rec = do(t, h, http.MethodPost, "/api/v1/session/options/emoji/toggle", created.Token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/session/regenerate", created.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/session/visibility", created.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[model.SessionResponse](t, rec)
	assert.False(t, got.Visible)
	assert.NotContains(t, got.Password, "A")

	rec = do(t, h, http.MethodPost, "/api/v1/session/copy", created.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[model.SessionResponse](t, rec)
	assert.True(t, got.Copied)

	rec = do(t, h, http.MethodDelete, "/api/v1/session", created.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/session", created.Token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionRoutesRequireToken(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v1/session", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/session/regenerate", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionEvents(t *testing.T) {
	h := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	created := createSession(t, h, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/session/events?token=" + created.Token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	readSnapshot := func() model.SessionResponse {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var resp model.SessionResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		return resp
	}

	first := readSnapshot()
	assert.Equal(t, created.Session.ID, first.ID)
	assert.Equal(t, created.Session.Password, first.Password)

	rec := do(t, h, http.MethodPut, "/api/v1/session/length", created.Token, `{"length": 25}`)
	require.Equal(t, http.StatusOK, rec.Code)

	next := readSnapshot()
	assert.Equal(t, 25, next.Length)
	assert.Len(t, next.Password, 25)
	assert.Greater(t, next.Version, first.Version)

	conn.Close(websocket.StatusNormalClosure, "")
}

func TestSessionEvents_UnknownSession(t *testing.T) {
	token, err := crypto.GenerateSessionToken("01HZX3M5Q8Y0V2W4K6T9R1N3P5", testSecret, time.Hour)
	require.NoError(t, err)

	rec := do(t, newTestRouter(t), http.MethodGet, "/api/v1/session/events", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOfferLatestKeepsNewest(t *testing.T) {
	ch := make(chan model.SessionResponse, 1)
	offerLatest(ch, model.SessionResponse{Version: 1})
	offerLatest(ch, model.SessionResponse{Version: 2})
	offerLatest(ch, model.SessionResponse{Version: 3})

	got := <-ch
	assert.Equal(t, uint64(3), got.Version)
	assert.Empty(t, ch)
}

func TestSessionEvents_ClosedOnDelete(t *testing.T) {
	h := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	created := createSession(t, h, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/session/events?token=" + created.Token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, _, err = conn.Read(ctx)
	require.NoError(t, err)

	rec := do(t, h, http.MethodDelete, "/api/v1/session", created.Token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	readCtx, readCancel := context.WithTimeout(ctx, 2*time.Second)
	defer readCancel()
	_, _, err = conn.Read(readCtx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}
