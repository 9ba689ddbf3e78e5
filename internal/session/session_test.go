package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	cookies := recorder.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	return req
}

func TestEstablishAndActorID(t *testing.T) {
	manager := NewManager("test-secret")

	recorder := httptest.NewRecorder()
	require.NoError(t, manager.Establish(recorder, 7))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	id, err := manager.ActorID(requestWithCookie(t, recorder))
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestActorIDWithoutCookie(t *testing.T) {
	manager := NewManager("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := manager.ActorID(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestActorIDRejectsTamperedToken(t *testing.T) {
	manager := NewManager("test-secret")
	other := NewManager("other-secret")

	recorder := httptest.NewRecorder()
	require.NoError(t, other.Establish(recorder, 7))

	_, err := manager.ActorID(requestWithCookie(t, recorder))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestActorIDRejectsExpiredToken(t *testing.T) {
	manager := NewManager("test-secret")

	token, err := issueToken(7, manager.secret, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	_, err = manager.ActorID(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClearExpiresCookie(t *testing.T) {
	manager := NewManager("test-secret")

	recorder := httptest.NewRecorder()
	manager.Clear(recorder)

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
