package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/accumlabs/ledgersim/app/services/sim/handlers"
	v1 "github.com/accumlabs/ledgersim/app/services/sim/handlers/v1"
	"github.com/accumlabs/ledgersim/business/sys/validate"
	"github.com/accumlabs/ledgersim/foundation/broadcast"
	"github.com/accumlabs/ledgersim/foundation/events"
	"github.com/accumlabs/ledgersim/foundation/ledger/bridge"
	"github.com/accumlabs/ledgersim/foundation/ledger/database"
	"github.com/accumlabs/ledgersim/foundation/ledger/genesis"
	"github.com/accumlabs/ledgersim/foundation/ledger/state"
	"github.com/accumlabs/ledgersim/foundation/ledger/user"
	"github.com/accumlabs/ledgersim/foundation/ledger/worker"
	"github.com/accumlabs/ledgersim/foundation/logger"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("SIM")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Sim struct {
			Miners           int           `conf:"default:3" validate:"gte=1"`
			Users            int           `conf:"default:3" validate:"gte=1"`
			BlockInterval    time.Duration `conf:"default:750ms"`
			WitnessRetries   int           `conf:"default:10" validate:"gte=0"`
			WitnessRetryBase time.Duration `conf:"default:250ms"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "SIM"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := validate.Check(cfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting simulation", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Event Support

	// The ledger packages accept a function of this signature to allow the
	// application to log. The raw messages are also sent to any websocket
	// client connected through the events package.
	evts := events.New()
	defer evts.Shutdown()

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Send(events.Parse(s))
	}

	// =========================================================================
	// Genesis and Transport

	userIDs := make([]database.UserID, cfg.Sim.Users)
	for i := range userIDs {
		userIDs[i] = database.UserID(i)
	}

	gen := genesis.Create(userIDs)
	log.Infow("startup", "status", "genesis created", "utxos", len(gen.Utxos), "accumulator", gen.Accum.String())

	txTopic := broadcast.NewTopic[database.Transaction]()
	blockTopic := broadcast.NewTopic[database.Block]()
	requestTopic := broadcast.NewTopic[bridge.WitnessRequest]()
	responseTopic := broadcast.NewTopic[bridge.WitnessResponse]()
	updateTopic := broadcast.NewTopic[bridge.UserUpdate]()

	// =========================================================================
	// Miner Support

	miners := make([]*state.State, cfg.Sim.Miners)
	workers := make([]*worker.Worker, cfg.Sim.Miners)
	for i := range miners {
		miners[i] = state.New(state.Config{
			AccumStart: gen.Accum,
			EvHandler:  ev,
		})

		id := fmt.Sprintf("miner-%d", i)
		workers[i] = worker.Run(worker.Config{
			State:         miners[i],
			Leader:        i == 0,
			BlockInterval: cfg.Sim.BlockInterval,
			TxSub:         txTopic.Subscribe(id),
			BlockSub:      blockTopic.Subscribe(id),
			BlockPub:      blockTopic,
			EvHandler:     ev,
		})
	}
	defer func() {
		for _, w := range workers {
			w.Shutdown()
		}
	}()
	log.Infow("startup", "status", "miners running", "miners", cfg.Sim.Miners, "leader", "miner-0")

	// =========================================================================
	// Bridge Support

	brdg := bridge.Run(bridge.Config{
		AccumStart:  gen.Accum,
		Users:       userIDs,
		Witnesses:   gen.Witnesses,
		BlockSub:    blockTopic.Subscribe("bridge"),
		RequestSub:  requestTopic.Subscribe("bridge"),
		ResponsePub: responseTopic,
		UpdatePub:   updateTopic,
		EvHandler:   ev,
	})
	defer brdg.Shutdown()
	log.Infow("startup", "status", "bridge running", "users", cfg.Sim.Users)

	// =========================================================================
	// User Support

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userErrors := make(chan error, cfg.Sim.Users)
	for _, userID := range userIDs {
		seed, exists := gen.UtxoFor(userID)
		if !exists {
			return fmt.Errorf("no genesis output for user %d", userID)
		}

		id := fmt.Sprintf("user-%d", userID)
		u := user.New(user.Config{
			ID:          userID,
			InitUtxos:   []database.Utxo{seed},
			RequestPub:  requestTopic,
			ResponseSub: responseTopic.Subscribe(id),
			UpdateSub:   updateTopic.Subscribe(id),
			TxPub:       txTopic,
			MaxRetries:  cfg.Sim.WitnessRetries,
			RetryBase:   cfg.Sim.WitnessRetryBase,
			EvHandler:   ev,
		})

		go func() {
			userErrors <- u.Run(ctx)
		}()
	}
	log.Infow("startup", "status", "users running", "users", cfg.Sim.Users)

	// =========================================================================
	// Start Debug API Service

	mux := handlers.PublicMux(v1.Config{
		Log:    log,
		Miners: miners,
		TxPub:  txTopic,
		Evts:   evts,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      mux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "debug api started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case err := <-userErrors:
		if err != nil {
			return fmt.Errorf("user error: %w", err)
		}

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)
	}

	// Stop the users first so no new transactions enter the system.
	cancel()

	sctx, scancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
	defer scancel()

	if err := api.Shutdown(sctx); err != nil {
		api.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}

	return nil
}
