package middleware

import (
	"net/http"

	pnet "leadrelay/internal/platform/net"
)

// AuthPort is the seam the admin surface implements
type AuthPort interface {
	// Parse returns the authenticated principal or an error
	Parse(r *http.Request) (userID string, err error)
}

// Auth guards routes with the given port, a nil port disables the guard
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
