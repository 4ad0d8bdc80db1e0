// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"github.com/accumlabs/ledgersim/app/services/sim/handlers/v1/public"
	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/events"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/dimfeld/httptreemux/v5"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log    *zap.SugaredLogger
	Miners []*state.State
	TxPub  *broadcast.Topic[database.Transaction]
	Evts   *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(mux *httptreemux.ContextMux, cfg Config) {
	pbl := public.Handlers{
		Log:    cfg.Log,
		Miners: cfg.Miners,
		TxPub:  cfg.TxPub,
		Evts:   cfg.Evts,
	}

	g := mux.NewGroup("/" + version)

	g.GET("/node/status", pbl.Status)
	g.GET("/tx/uncommitted/list", pbl.Mempool)
	g.GET("/accumulator", pbl.Accum)
	g.GET("/events", pbl.Events)
	g.POST("/tx/inject", pbl.InjectTx)
}
