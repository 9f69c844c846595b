package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"azoom-rental-backend/internal/config"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/service"
)

type AuthMiddleware struct {
	authSvc service.AuthService
}

func NewAuthMiddleware(authSvc service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// Handler authenticates and authorizes requests according to the security
// level of the matched route. Public routes still get a session when a valid
// token is presented.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		level := config.SecurityPublic
		if route := mux.CurrentRoute(r); route != nil {
			level = config.GetSecurityLevel(route.GetName())
		}

		token := extractToken(r)
		if token == "" {
			if level == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}
			writeError(w, r, service.ErrUnauthenticated)
			return
		}

		session, err := m.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			if level == config.SecurityPublic {
				next.ServeHTTP(w, r)
				return
			}
			logger.Debug("Rejected token", "path", r.URL.Path, "error", err)
			writeError(w, r, err)
			return
		}

		if err := checkSecurityLevel(level, session); err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.WithSession(r.Context(), session)))
	})
}

// extractToken reads a bearer token from the Authorization header, or from the
// token query parameter for browser websocket clients that cannot set headers.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		fields := strings.Fields(h)
		if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
			return fields[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func checkSecurityLevel(level config.SecurityLevel, s domain.Session) error {
	switch level {
	case config.SecurityCustomer:
		if !s.IsCustomer() {
			return service.ErrForbidden
		}
	case config.SecurityStaff:
		if !s.IsStaff() {
			return service.ErrForbidden
		}
	}
	return nil
}
