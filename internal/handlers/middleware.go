package handlers

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

// Middleware wraps an HTTP handler
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in declaration order
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] == nil {
			continue
		}
		wrapped = middleware[i](wrapped)
	}
	return wrapped
}

// RequestID injects and echoes a request id for correlation
func (ctx *Context) RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
				r.Header.Set("X-Request-ID", id)
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

// RecoverPanic converts panics into HTTP 500 responses
func (ctx *Context) RecoverPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					ctx.Log.Error().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("request_id", r.Header.Get("X-Request-ID")).
						Interface("panic", recovered).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LogRequests logs each request once it has been served.
// The response writer is passed through untouched so streams can flush and hijack.
func (ctx *Context) LogRequests() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			ctx.Log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("request_id", r.Header.Get("X-Request-ID")).
				Dur("duration", time.Since(start)).
				Msg("request served")
		})
	}
}
