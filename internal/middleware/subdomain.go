package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

// RewriteSubdomain serves <role>.<domain>/x as /<role>/x. The rewrite is
// internal; the client URL is unchanged.
func RewriteSubdomain(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if path, ok := rewritePath(r.Host, r.URL.Path); ok {
			r.URL.Path = path
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

func rewritePath(host, path string) (string, bool) {
	label := subdomain(host)
	if _, ok := model.RoleForSubdomain(label); !ok {
		return path, false
	}

	prefix := "/" + label
	if path == prefix || strings.HasPrefix(path, prefix+"/") {
		return path, false
	}
	if path == "" || path == "/" {
		return prefix + "/", true
	}
	return prefix + path, true
}

// subdomain returns the leftmost host label with any port removed.
func subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	label, _, _ := strings.Cut(host, ".")
	return strings.ToLower(label)
}
