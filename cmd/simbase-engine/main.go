// Command simbase-engine runs the dispatch and coordination layer as a
// standalone process: load any persisted bases, start the periodic
// snapshot scheduler, and (optionally) serve the read-only debug HTTP
// surface until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	log "github.com/erigontech/erigon-lib/log/v3"

	"github.com/simbase-engine/simbase/config"
	"github.com/simbase-engine/simbase/engine"
	"github.com/simbase-engine/simbase/httpapi"
	"github.com/simbase-engine/simbase/kernel/memkernel"
	"github.com/simbase-engine/simbase/logging"
)

func main() {
	app := &cli.App{
		Name:  "simbase-engine",
		Usage: "vector-similarity dispatch and coordination engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "address for the read-only debug HTTP server (empty disables it)",
				Value: "",
			},
			&cli.IntFlag{
				Name:  "verbosity",
				Usage: "log level, 0 (crit) through 5 (trace)",
				Value: int(log.LvlInfo),
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errors.WithStack(err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logging.Setup(log.Lvl(c.Int("verbosity")))
	logger := logging.Scoped("main")

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return errors.Wrapf(err, "load config %s", path)
		}
		cfg = loaded
	}

	// memkernel.Factory is the reference numerical kernel this
	// repository ships; a production deployment swaps it for the real
	// one via the same kernel.Factory seam.
	eng := engine.New(cfg, memkernel.Factory{})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loadErr := make(chan error, 1)
	eng.Load(ctx, func(_ struct{}, err error) { loadErr <- err })
	if err := <-loadErr; err != nil {
		return errors.Wrap(err, "load persisted bases")
	}

	eng.StartCron(ctx)
	defer eng.StopCron()

	if addr := c.String("listen"); addr != "" {
		logger.Info("debug http server listening", "addr", addr)
		return httpapi.ListenAndServe(ctx, addr, eng)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
