package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *mockProfiles) GetWithRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.Profile, error) {
	args := m.Called(ctx, id, role)
	p, _ := args.Get(0).(*model.Profile)
	return p, args.Error(1)
}

func (m *mockProfiles) Upsert(ctx context.Context, profile *model.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func withUser(user *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		}
		c.Next()
	}
}

func TestRequireRole(t *testing.T) {
	user := &model.User{ID: uuid.New()}

	tests := []struct {
		name    string
		user    *model.User
		profile *model.Profile
		err     error
		want    int
	}{
		{"anonymous", nil, nil, nil, http.StatusUnauthorized},
		{"pharmacist", user, &model.Profile{ID: user.ID, Role: model.RolePharmacist}, nil, http.StatusOK},
		{"patient", user, &model.Profile{ID: user.ID, Role: model.RolePatient}, nil, http.StatusForbidden},
		{"no profile", user, nil, repository.ErrNotFound, http.StatusForbidden},
		{"store down", user, nil, errors.New("conn refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(mockProfiles)
			if tt.user != nil {
				profiles.On("Get", mock.Anything, tt.user.ID).Return(tt.profile, tt.err)
			}

			r := gin.New()
			r.Use(withUser(tt.user))
			r.GET("/pharmacy/inventory", NewAuthMiddleware(profiles).RequireRole(model.RolePharmacist), func(c *gin.Context) {
				_, ok := c.Get(ContextProfile)
				assert.True(t, ok)
				c.Status(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pharmacy/inventory", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireUser(t *testing.T) {
	mw := NewAuthMiddleware(new(mockProfiles))

	for _, user := range []*model.User{nil, {ID: uuid.New()}} {
		r := gin.New()
		r.Use(withUser(user), mw.RequireUser())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if user == nil {
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		} else {
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	}
}

func TestAPIKey(t *testing.T) {
	r := gin.New()
	r.GET("/realtime/chat", APIKey("anon-key"), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"header", "/realtime/chat", "anon-key", http.StatusOK},
		{"query", "/realtime/chat?apikey=anon-key", "", http.StatusOK},
		{"wrong", "/realtime/chat", "nope", http.StatusUnauthorized},
		{"missing", "/realtime/chat", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(HeaderAPIKey, tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole_Messages(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	tests := []struct {
		name    string
		err     error
		want    string
		notWant string
	}{
		{"no profile", repository.ErrNotFound, "profile missing", ""},
		{"store down", errors.New("conn refused"), "failed to load profile", "conn refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(mockProfiles)
			profiles.On("Get", mock.Anything, user.ID).Return(nil, tt.err)

			r := gin.New()
			r.Use(withUser(user))
			r.GET("/patient", NewAuthMiddleware(profiles).RequireRole(model.RolePatient), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/patient", nil))
			assert.Contains(t, rec.Body.String(), tt.want)
			if tt.notWant != "" {
				assert.NotContains(t, rec.Body.String(), tt.notWant)
			}
		})
	}
}
