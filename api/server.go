package api

import (
	"net/http"
	"os"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 60 * time.Second
	// covers the checkout submit timeout plus encoding
	writeTimeout = 30 * time.Second
)

// Addr resolves the listen address. A platform-provided PORT wins over config.
func Addr(cfg *config.Config) string {
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	return ":" + port
}

// NewServer wraps handler in an http.Server with the API timeouts.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	wt := writeTimeout
	if st := cfg.Checkout.SubmitTimeout; st > 0 && st+5*time.Second > wt {
		wt = st + 5*time.Second
	}
	return &http.Server{
		Addr:              Addr(cfg),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      wt,
		IdleTimeout:       idleTimeout,
	}
}
