// Package handlers manages the different versions of the debug API.
package handlers

import (
	"net/http"

	v1 "github.com/accumlabs/ledgersim/app/services/sim/handlers/v1"
	"github.com/dimfeld/httptreemux/v5"
)

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg v1.Config) http.Handler {
	mux := httptreemux.NewContextMux()

	v1.PublicRoutes(mux, cfg)

	return mux
}
