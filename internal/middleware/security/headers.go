package security

import (
	"net/http"
	"strconv"
	"strings"
)

// HeadersConfig controls the response headers added to every API reply.
type HeadersConfig struct {
	CSP        string
	HSTSMaxAge int

	// AllowOrigin enables CORS for one origin, or for any origin when "*".
	AllowOrigin string
	// NoStorePrefix marks responses under this path as uncacheable, since
	// they carry ledger data.
	NoStorePrefix string
}

// DefaultHeadersConfig returns defaults for a JSON API that serves no
// documents of its own.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:           "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:    31536000,
		NoStorePrefix: "/api/",
	}
}

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", ")
	corsHeaders = "Content-Type, Accept-Language, X-Request-ID"
)

type HeadersMiddleware struct {
	config HeadersConfig
	static http.Header
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	static := http.Header{}
	static.Set("X-Content-Type-Options", "nosniff")
	static.Set("X-Frame-Options", "DENY")
	static.Set("Referrer-Policy", "no-referrer")
	static.Set("Cross-Origin-Resource-Policy", "same-origin")
	if config.CSP != "" {
		static.Set("Content-Security-Policy", config.CSP)
	}
	return &HeadersMiddleware{config: config, static: static}
}

// Handler applies the headers and answers CORS preflight requests from the
// allowed origin.
func (h *HeadersMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		for k, v := range h.static {
			headers[k] = v
		}
		if h.config.NoStorePrefix != "" && strings.HasPrefix(r.URL.Path, h.config.NoStorePrefix) {
			headers.Set("Cache-Control", "no-store")
		}
		if r.TLS != nil && h.config.HSTSMaxAge > 0 {
			headers.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(h.config.HSTSMaxAge))
		}

		allowed := h.allowOrigin(r.Header.Get("Origin"))
		if allowed != "" {
			headers.Set("Access-Control-Allow-Origin", allowed)
			headers.Set("Access-Control-Allow-Methods", corsMethods)
			headers.Set("Access-Control-Allow-Headers", corsHeaders)
			headers.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
			headers.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allowOrigin returns the value for Access-Control-Allow-Origin, or "" when
// the request origin is not allowed.
func (h *HeadersMiddleware) allowOrigin(origin string) string {
	switch {
	case h.config.AllowOrigin == "":
		return ""
	case h.config.AllowOrigin == "*":
		return "*"
	case origin == "" || strings.EqualFold(origin, h.config.AllowOrigin):
		return h.config.AllowOrigin
	default:
		return ""
	}
}
