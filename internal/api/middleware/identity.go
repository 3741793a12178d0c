package middleware

import (
	"context"
	"net/http"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

type contextKey string

// identityContextKey carries the caller's identity through the request.
const identityContextKey contextKey = "identity"

// identityHeader is the out-of-band header carrying the caller's name.
const identityHeader = "User"

// Identity extracts the caller's name from the User header and stores it
// in the request context. Handlers decide whether a missing identity is
// an error.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := RepairEncoding(r.Header.Get(identityHeader))
		ctx := context.WithValue(r.Context(), identityContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext retrieves the caller's name, or "" when absent.
func IdentityFromContext(ctx context.Context) string {
	user, _ := ctx.Value(identityContextKey).(string)
	return user
}

// RepairEncoding fixes header values that reached us as raw Latin-1
// bytes instead of UTF-8. Valid UTF-8 passes through untouched; anything
// else is reinterpreted as ISO 8859-1, which maps every byte to a rune
// and therefore cannot fail on real input.
func RepairEncoding(v string) string {
	if utf8.ValidString(v) {
		return v
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().String(v)
	if err != nil {
		return v
	}
	return decoded
}
