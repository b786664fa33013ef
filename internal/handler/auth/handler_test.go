package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

type fakeActions struct {
	login     actions.LoginInput
	result    model.ActionResult
	session   *model.Session
	signedOut [2]string
}

func (f *fakeActions) Login(ctx context.Context, in actions.LoginInput) (model.ActionResult, *model.Session) {
	f.login = in
	return f.result, f.session
}

func (f *fakeActions) Signup(ctx context.Context, in actions.SignupInput) (model.ActionResult, *model.Session) {
	return f.result, f.session
}

func (f *fakeActions) Signout(ctx context.Context, accessToken, refreshToken string) model.ActionResult {
	f.signedOut = [2]string{accessToken, refreshToken}
	return model.RedirectTo("/login")
}

var cookies = auth.CookieConfig{AccessName: "sb-access", RefreshName: "sb-refresh"}

func setup(a Actions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(a, cookies).RegisterRoutes(r)
	return r
}

func postForm(r http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLogin_SetsCookiesAndRedirects(t *testing.T) {
	fa := &fakeActions{
		result: model.RedirectTo("/"),
		session: &model.Session{
			AccessToken:      "acc",
			RefreshToken:     "ref",
			RefreshExpiresAt: time.Now().Add(time.Hour),
		},
	}
	rec := postForm(setup(fa), "/login", url.Values{"email": {"a@b.co"}, "password": {"secret1"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "a@b.co", fa.login.Email)
	names := map[string]string{}
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = ck.Value
	}
	assert.Equal(t, "acc", names["sb-access"])
	assert.Equal(t, "ref", names["sb-refresh"])
}

func TestLogin_HonoursLocalNext(t *testing.T) {
	fa := &fakeActions{result: model.RedirectTo("/"), session: &model.Session{}}
	r := setup(fa)

	rec := postForm(r, "/login?next=/connect?pharmacy_id=abc", url.Values{"email": {"a@b.co"}, "password": {"secret1"}})
	assert.Equal(t, "/connect?pharmacy_id=abc", rec.Header().Get("Location"))

	rec = postForm(r, "/login?next=//evil.example", url.Values{"email": {"a@b.co"}, "password": {"secret1"}})
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLogin_FailureIsJSON(t *testing.T) {
	fa := &fakeActions{result: model.Failed("Invalid login credentials")}
	rec := postForm(setup(fa), "/login", url.Values{"email": {"a@b.co"}, "password": {"bad"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid login credentials")
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignout_ClearsCookies(t *testing.T) {
	fa := &fakeActions{}
	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access", Value: "acc"})
	req.AddCookie(&http.Cookie{Name: "sb-refresh", Value: "ref"})
	rec := httptest.NewRecorder()
	setup(fa).ServeHTTP(rec, req)

	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Equal(t, [2]string{"acc", "ref"}, fa.signedOut)
	for _, ck := range rec.Result().Cookies() {
		assert.Empty(t, ck.Value)
		assert.Less(t, ck.MaxAge, 0)
	}
}

func TestSignupPage(t *testing.T) {
	r := setup(&fakeActions{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup/pharmacy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"pharmacist"`)
	assert.Contains(t, rec.Body.String(), "pharmacy_name")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup/admin", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
