package middleware

import (
	"anamnese/internal/cache"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayedHeader    = "Idempotent-Replayed"

	maxIdempotentBody = 1 << 20
)

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key the caller already used. Keys are scoped to the caller
// and path, so it must run after the auth middleware. Server errors are
// not stored and the key is released for another attempt. Reusing a key
// with a different body is rejected with 422
func Idempotency(store cache.IdempotencyCache, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(header) > 255 {
				writeError(w, http.StatusBadRequest, "idempotency key too long")
				return
			}

			payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(payload))
			sum := sha256.Sum256(payload)
			fingerprint := hex.EncodeToString(sum[:])

			ctx := r.Context()
			key := principal(ctx) + ":" + r.URL.Path + ":" + header

			claimed, err := store.Claim(ctx, key, fingerprint)
			if err != nil {
				logger.Warn("idempotency store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !claimed {
				replay(w, r, store, key, fingerprint, next, logger)
				return
			}

			// cache writes must outlive a client that hung up
			bg := context.WithoutCancel(ctx)
			var body bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			defer func() {
				if rec := recover(); rec != nil {
					store.Release(bg, key)
					panic(rec)
				}
			}()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := store.Release(bg, key); err != nil {
					logger.Warn("failed to release idempotency key", "error", err)
				}
				return
			}
			err = store.Complete(bg, key, cache.StoredResponse{
				Status:      status,
				ContentType: ww.Header().Get("Content-Type"),
				Body:        body.Bytes(),
				Fingerprint: fingerprint,
			})
			if err != nil {
				logger.Warn("failed to store idempotent response", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, store cache.IdempotencyCache, key, fingerprint string, next http.Handler, logger *slog.Logger) {
	resp, pending, err := store.Get(r.Context(), key)
	switch {
	case err != nil:
		logger.Warn("idempotency store unavailable", "error", err)
		next.ServeHTTP(w, r)
	case resp != nil && resp.Fingerprint != "" && resp.Fingerprint != fingerprint:
		writeError(w, http.StatusUnprocessableEntity, "idempotency key reused with a different request body")
	case pending:
		writeError(w, http.StatusConflict, "a request with this idempotency key is in progress")
	case resp == nil:
		// expired between claim and read
		next.ServeHTTP(w, r)
	default:
		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		}
		w.Header().Set(ReplayedHeader, "true")
		w.WriteHeader(resp.Status)
		w.Write(resp.Body)
	}
}
