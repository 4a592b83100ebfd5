package reedit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iisa-recruitment-backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var window = domain.EditWindow{Days: 3, Location: time.UTC}

func TestCheck(t *testing.T) {
	registered := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Should offer re-edit inside the window", func(t *testing.T) {
		store := NewMemoryStore()
		Remember(store, "cand-9", registered, "tok")

		got := Check(store, window, registered.Add(48*time.Hour))

		assert.True(t, got.CanReEdit)
		assert.Equal(t, "cand-9", got.CandidateID)
		assert.Equal(t, "tok", got.EditToken)
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, got.ExpiresAt.Equal(registered.AddDate(0, 0, 3)))
	})

	t.Run("Should clear the keys once the deadline is reached", func(t *testing.T) {
		store := NewMemoryStore()
		Remember(store, "cand-9", registered, "tok")

		got := Check(store, window, registered.AddDate(0, 0, 3))

		assert.False(t, got.CanReEdit)
		for _, key := range []string{KeyCandidateID, KeyRegistrationDate, KeyEditToken} {
			_, ok := store.Get(key)
			assert.False(t, ok, key)
		}
	})

	t.Run("Should say no when nothing was remembered", func(t *testing.T) {
		assert.Equal(t, Eligibility{}, Check(NewMemoryStore(), window, registered))
	})

	t.Run("Should clear an unreadable registration date", func(t *testing.T) {
		store := NewMemoryStore()
		store.Set(KeyCandidateID, "cand-9")
		store.Set(KeyRegistrationDate, "not a date")

		assert.False(t, Check(store, window, registered).CanReEdit)
		_, ok := store.Get(KeyCandidateID)
		assert.False(t, ok)
	})

	t.Run("Should store the registration date as ISO-8601", func(t *testing.T) {
		store := NewMemoryStore()
		Remember(store, "cand-9", registered.In(time.FixedZone("IDT", 3*3600)), "")

		raw, ok := store.Get(KeyRegistrationDate)
		require.True(t, ok)
		assert.Equal(t, "2025-07-01T09:00:00Z", raw)
		_, ok = store.Get(KeyEditToken)
		assert.False(t, ok)
	})
}

func TestCookieStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Should read request cookies and see its own writes", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/public/re-edit", nil)
		c.Request.AddCookie(&http.Cookie{Name: KeyCandidateID, Value: "cand-1"})

		store := NewCookieStore(c, 72*time.Hour, false)
		v, ok := store.Get(KeyCandidateID)
		require.True(t, ok)
		assert.Equal(t, "cand-1", v)

		store.Set(KeyCandidateID, "cand-2")
		v, _ = store.Get(KeyCandidateID)
		assert.Equal(t, "cand-2", v)

		store.Remove(KeyCandidateID)
		_, ok = store.Get(KeyCandidateID)
		assert.False(t, ok)

		cookies := w.Header().Values("Set-Cookie")
		require.Len(t, cookies, 2)
		assert.True(t, strings.HasPrefix(cookies[0], KeyCandidateID+"=cand-2"))
		assert.Contains(t, cookies[0], "HttpOnly")
		assert.Contains(t, cookies[1], "Max-Age=0")
	})

	t.Run("Should round-trip a remembered registration through cookies", func(t *testing.T) {
		registered := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/public/candidates", nil)
		Remember(NewCookieStore(c, time.Hour, false), "cand-3", registered, "tok")

		next := httptest.NewRequest(http.MethodGet, "/v1/public/re-edit", nil)
		for _, ck := range w.Result().Cookies() {
			next.AddCookie(ck)
		}
		c2, _ := gin.CreateTestContext(httptest.NewRecorder())
		c2.Request = next

		got := Check(NewCookieStore(c2, time.Hour, false), window, registered.Add(time.Hour))
		assert.True(t, got.CanReEdit)
		assert.Equal(t, "cand-3", got.CandidateID)
	})
}
