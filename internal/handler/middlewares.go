package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sertifikasi-nasional/lsp-backend/internal/metrics"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("request handled", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog mangles multi-line stack traces
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := rw.StatusCode
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// auth extracts and verifies the bearer token. Every failure mode (missing
// header, malformed scheme, expired, tampered) answers 401; expiry and
// tampering are deliberately indistinguishable to the caller.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			h.errorResponse(w, r, http.StatusUnauthorized, "authorization token required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &authClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil {
			h.errorResponse(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)
		ctx = context.WithValue(ctx, UsernameCtxKey, claims.Username)
		ctx = context.WithValue(ctx, RoleIDCtxKey, claims.RoleID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveRoleName maps a role id to its name via the redis cache, falling
// back to the role registry. An unknown role resolves to "" without error;
// an error return means the registry itself failed.
func (h *Handler) resolveRoleName(roleID int64) (string, error) {
	cacheKey := fmt.Sprintf("role_name:%d", roleID)

	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
		defer cancel()

		if name, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			return name, nil
		}
		// cache miss or redis failure: fall through to the registry
	}

	role, err := h.roles.GetRoleByID(roleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	if h.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
		defer cancel()

		if err := h.redisClient.Set(ctx, cacheKey, role.Name, time.Duration(h.config.Redis.RoleCacheTTL)*time.Second).Err(); err != nil {
			slog.Warn("unable to cache role name", "role_id", roleID, "error", err)
		}
	}

	return role.Name, nil
}

// requiredRole gates a route on an allow-list of role names. An empty list
// permits any authenticated caller. A registry infrastructure failure is a
// 500, not a 403: missing data and broken infrastructure must stay
// distinguishable in the logs.
func (h *Handler) requiredRole(roles []string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := r.Context().Value(RoleIDCtxKey).(int64)
			if !ok {
				h.errorResponse(w, r, http.StatusForbidden, "access denied: no role information")
				return
			}

			roleName, err := h.resolveRoleName(roleID)
			if err != nil {
				h.internalServerError(w, r, err)
				return
			}
			if roleName == "" {
				h.errorResponse(w, r, http.StatusForbidden, "access denied: invalid role")
				return
			}

			if len(roles) > 0 && !slices.Contains(roles, roleName) {
				h.errorResponse(w, r, http.StatusForbidden, "access denied: insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// asesiProfile loads the asesi identified by the {id} URL param into the
// request context.
func (h *Handler) asesiProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "invalid asesi id")
			return
		}

		profile, err := h.repository.GetAsesiByID(id)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, http.StatusNotFound, "asesi not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AsesiCtxKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
