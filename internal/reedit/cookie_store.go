package reedit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieStore keeps the bookkeeping in HTTP-only cookies on the current
// request. Values written during the request are visible to later Gets.
type CookieStore struct {
	c       *gin.Context
	maxAge  int
	secure  bool
	pending map[string]*string
}

func NewCookieStore(c *gin.Context, maxAge time.Duration, secure bool) *CookieStore {
	return &CookieStore{
		c:       c,
		maxAge:  int(maxAge.Seconds()),
		secure:  secure,
		pending: make(map[string]*string),
	}
}

func (s *CookieStore) Get(key string) (string, bool) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	v, err := s.c.Cookie(key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *CookieStore) Set(key, value string) {
	s.pending[key] = &value
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, s.maxAge, "/", "", s.secure, true)
}

func (s *CookieStore) Remove(key string) {
	s.pending[key] = nil
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, "", -1, "/", "", s.secure, true)
}
