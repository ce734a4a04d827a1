//go:build js && wasm

package main

import (
	"os"
	"time"

	"github.com/syumai/workers"

	"github.com/tenderops/console-gateway/internal/gateway"
	"github.com/tenderops/console-gateway/internal/logger"
	"github.com/tenderops/console-gateway/internal/upstream"
)

// The worker build reads its backend endpoints straight from the worker
// environment; viper's file lookup has no filesystem to read here.
func main() {
	log := logger.NewProduction()

	auth := os.Getenv("CONSOLE_BACKENDS_AUTH_BASE_URL")
	data := os.Getenv("CONSOLE_BACKENDS_DATA_BASE_URL")
	recording := os.Getenv("CONSOLE_BACKENDS_RECORDING_BASE_URL")
	if auth == "" || data == "" || recording == "" {
		log.Fatal().Msg("Backend base URLs are not configured")
	}

	gw := gateway.New(gateway.Config{
		CookieName:   os.Getenv("CONSOLE_SESSION_COOKIE_NAME"),
		CookieDomain: os.Getenv("CONSOLE_SESSION_COOKIE_DOMAIN"),
		CookieSecure: true,
	}, gateway.Backends{
		Auth:      upstream.NewForwarder(auth, 5*time.Second),
		Data:      upstream.NewForwarder(data, 5*time.Second),
		Recording: upstream.NewForwarder(recording, 5*time.Second),
	}, log)

	workers.Serve(gw.Router())
}
