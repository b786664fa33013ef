package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriteSubdomain(t *testing.T) {
	tests := []struct {
		name string
		host string
		path string
		want string
	}{
		{"pharmacy subdomain", "pharmacy.example.com", "/stock", "/pharmacy/stock"},
		{"already prefixed", "pharmacy.example.com", "/pharmacy/stock", "/pharmacy/stock"},
		{"prefix alone", "pharmacy.example.com", "/pharmacy", "/pharmacy"},
		{"lookalike prefix still rewritten", "pharmacy.example.com", "/pharmacystock", "/pharmacy/pharmacystock"},
		{"www untouched", "www.example.com", "/x", "/x"},
		{"apex untouched", "example.com", "/x", "/x"},
		{"root with port", "doctor.localhost:3000", "/", "/doctor/"},
		{"patient", "patient.example.com", "/connect", "/patient/connect"},
		{"uppercase host", "Patient.Example.com", "/bills", "/patient/bills"},
		{"plain localhost", "localhost:3000", "/pharmacy", "/pharmacy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RewriteSubdomain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.URL.Path
			}))

			req := httptest.NewRequest(http.MethodGet, "http://"+tt.host+tt.path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, got)
			assert.Empty(t, rec.Header().Get("Location"), "rewrite must not redirect")
		})
	}
}

func TestRewritePathIdempotent(t *testing.T) {
	once, _ := rewritePath("pharmacy.example.com", "/stock")
	twice, changed := rewritePath("pharmacy.example.com", once)

	assert.Equal(t, once, twice)
	assert.False(t, changed)
}
