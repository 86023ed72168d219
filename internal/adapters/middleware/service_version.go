package middleware

import (
	"net/http"
)

const ServiceVersionHeader = "X-Service-Version"

type ServiceVersionMiddleware struct {
	version string
}

func NewServiceVersionMiddleware(version string) ServiceVersionMiddleware {
	return ServiceVersionMiddleware{
		version: version,
	}
}

func (mw ServiceVersionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mw.version != "" {
			w.Header().Set(ServiceVersionHeader, mw.version)
		}

		next.ServeHTTP(w, r)
	})
}
