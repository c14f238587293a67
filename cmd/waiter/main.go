package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/replicate/go/logging"
	"github.com/replicate/go/must"
	"github.com/replicate/go/version"
	_ "go.uber.org/automaxprocs"

	"github.com/rozhnof/waiter/internal/config"
	"github.com/rozhnof/waiter/internal/server"
	"github.com/rozhnof/waiter/internal/service"
)

var logger = logging.New("waiter")

func main() {
	log := logger.Sugar()

	var cfg config.Config
	flags := ff.NewFlagSet("waiter")
	must.Do(flags.AddStruct(&cfg))

	cmd := &ff.Command{
		Name:  "waiter",
		Usage: "waiter [FLAGS]",
		Flags: flags,
		Exec: func(ctx context.Context, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log.Infow("configuration",
				"host", cfg.Host,
				"port", cfg.Port,
				"read-timeout", cfg.ReadTimeout,
				"header-format", cfg.HeaderFormat,
			)

			svc := service.New(cfg, os.Stdout, logger)
			if err := svc.Initialize(ctx); err != nil {
				return err
			}
			if err := svc.Listen(); err != nil {
				return err
			}
			if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	err := cmd.Parse(os.Args[1:], ff.WithEnvVarPrefix("WAITER"))
	switch {
	case errors.Is(err, ff.ErrHelp):
		must.Get(fmt.Fprintln(os.Stderr, ffhelp.Command(cmd)))
		os.Exit(1)
	case err != nil:
		log.Error(err)
		must.Get(fmt.Fprintln(os.Stderr, ffhelp.Command(cmd)))
		os.Exit(1)
	}

	log.Infow("starting waiter", "version", version.Version())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		s := <-ch
		log.Infow("stopping waiter", "signal", s)
		cancel()
	}()
	if err := cmd.Run(ctx); err != nil {
		var bindErr *server.BindError
		if errors.As(err, &bindErr) {
			log.Errorw("failed to bind listening socket", "addr", bindErr.Addr, "error", bindErr.Err)
		} else {
			log.Error(err)
		}
		os.Exit(1)
	}
	log.Info("shutdown completed normally")
}
