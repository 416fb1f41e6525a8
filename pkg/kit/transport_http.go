package kit

import (
	"net/http"

	"github.com/google/uuid"
)

// Headers read and written by Identify.
const (
	HeaderUserID    = "X-User-ID"
	HeaderRequestID = "X-Request-ID"
)

// Identify stores the caller identity and a request ID in the request
// context. An incoming X-Request-ID is kept; otherwise a UUID is generated
// and echoed back.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := WithRequestID(r.Context(), id)
		ctx = WithTransport(ctx, "http")
		if user := r.Header.Get(HeaderUserID); user != "" {
			ctx = WithUserID(ctx, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
