package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// Labels that never dispatch to a tenant page.
var reservedLabels = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
	"app":   true,
}

// First path segments that belong to the API surface. Requests to these
// stay on their original route even when the host carries a tenant label.
var apiSegments = map[string]bool{
	"health":    true,
	"signup":    true,
	"signin":    true,
	"signout":   true,
	"me":        true,
	"teams":     true,
	"products":  true,
	"pages":     true,
	"subdomain": true,
}

// Subdomain is middleware that rewrites tenant-subdomain requests to the
// internal subdomain route, carrying the extracted host label as a query
// parameter. Bare hosts (no dot), localhost, IP addresses, the configured
// base domain and reserved labels pass through untouched, as do requests
// addressing any API route.
func Subdomain(baseDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			label, ok := tenantLabel(r.Host, baseDomain)
			if !ok || isAPIPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			r.URL.Path = "/subdomain"
			q := url.Values{"subdomain": {label}}
			r.URL.RawQuery = q.Encode()
			next.ServeHTTP(w, r)
		})
	}
}

// isAPIPath reports whether the path's first segment names an API route.
func isAPIPath(path string) bool {
	seg := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	return apiSegments[seg]
}

// tenantLabel extracts the first DNS label from a request host. The second
// return value is false when the host does not address a tenant subdomain.
func tenantLabel(host, baseDomain string) (string, bool) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	if host == "" || host == "localhost" || host == baseDomain {
		return "", false
	}
	if net.ParseIP(host) != nil {
		return "", false
	}
	if !strings.Contains(host, ".") {
		return "", false
	}

	label := strings.SplitN(host, ".", 2)[0]
	if reservedLabels[label] {
		return "", false
	}

	return label, true
}
