package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/2beens/exercisetracker/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			ip, err := pkg.ReadUserIP(r)
			if err != nil {
				ip = r.RemoteAddr
			}
			log.WithFields(log.Fields{
				"ip":     ip,
				"method": r.Method,
				"path":   r.URL.Path,
				"ua":     r.Header.Get("User-Agent"),
				"took":   time.Since(start).String(),
			}).Trace("request served")
		})
	}
}

// DrainAndCloseRequest drains and closes the request body once the handler is done.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}
