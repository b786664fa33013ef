package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

// CookieConfig names the session cookies. Domain is shared by all role
// subdomains so one login covers every portal.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Domain      string
	Secure      bool
}

// Read returns the access and refresh tokens carried by the request.
func (c CookieConfig) Read(r *http.Request) (string, string) {
	var access, refresh string
	if ck, err := r.Cookie(c.AccessName); err == nil {
		access = ck.Value
	}
	if ck, err := r.Cookie(c.RefreshName); err == nil {
		refresh = ck.Value
	}
	return access, refresh
}

// Cookies builds the cookies that carry session.
func (c CookieConfig) Cookies(session *model.Session) []*http.Cookie {
	return []*http.Cookie{
		c.cookie(c.AccessName, session.AccessToken, session.RefreshExpiresAt),
		c.cookie(c.RefreshName, session.RefreshToken, session.RefreshExpiresAt),
	}
}

// Cleared builds cookies that delete the session.
func (c CookieConfig) Cleared() []*http.Cookie {
	access := c.cookie(c.AccessName, "", time.Unix(0, 0))
	access.MaxAge = -1
	refresh := c.cookie(c.RefreshName, "", time.Unix(0, 0))
	refresh.MaxAge = -1
	return []*http.Cookie{access, refresh}
}

func (c CookieConfig) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  expires,
		Secure:   c.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetOnRequest replaces cookies of the same name on r so later readers of the
// request observe the new values.
func SetOnRequest(r *http.Request, cookies []*http.Cookie) {
	replaced := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		replaced[ck.Name] = true
	}

	var parts []string
	for _, ck := range r.Cookies() {
		if !replaced[ck.Name] {
			parts = append(parts, ck.Name+"="+ck.Value)
		}
	}
	for _, ck := range cookies {
		if ck.MaxAge < 0 {
			continue
		}
		parts = append(parts, ck.Name+"="+ck.Value)
	}

	if len(parts) == 0 {
		r.Header.Del("Cookie")
		return
	}
	r.Header.Set("Cookie", strings.Join(parts, "; "))
}
