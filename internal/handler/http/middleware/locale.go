package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/i18n"
)

// Locale stores the best supported match of Accept-Language on the context.
// A "lang" query parameter takes precedence for EventSource clients.
func Locale(t *i18n.Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Accept-Language")
			if lang := r.URL.Query().Get("lang"); lang != "" {
				header = lang
			}
			locale := t.Match(header)
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), locale)))
		})
	}
}
