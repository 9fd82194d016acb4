package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/poiesic/docindex"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the document front door over gRPC and, optionally, HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "rpc-address",
				Usage: "gRPC listen address",
			},
			&cli.BoolFlag{
				Name:  "http",
				Usage: "Also serve the HTTP gateway",
			},
			&cli.StringFlag{
				Name:  "http-address",
				Usage: "HTTP gateway listen address",
			},
			&cli.BoolFlag{
				Name:  "with-worker",
				Usage: "Run an ingestion worker in the same process",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := configFrom(c)
	if err != nil {
		return err
	}
	overrideString(c, "rpc-address", &cfg.RPCAddress)
	overrideString(c, "http-address", &cfg.HTTPAddress)
	if c.IsSet("http") {
		cfg.HTTPEnabled = c.Bool("http")
	}

	sys, err := docindex.Open(c.Context, cfg)
	if err != nil {
		return err
	}
	defer sys.Close()

	svc, err := sys.NewService()
	if err != nil {
		return err
	}
	server, err := sys.NewServer(svc)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.RPCAddress)
	if err != nil {
		server.Stop()
		return err
	}

	g, ctx := errgroup.WithContext(c.Context)

	g.Go(func() error {
		slog.Info("gRPC server listening", "address", lis.Addr().String())
		return server.Serve(lis)
	})

	var httpServer *http.Server
	if cfg.HTTPEnabled {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddress,
			Handler:           sys.NewHTTPHandler(svc),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			slog.Info("HTTP gateway listening", "address", cfg.HTTPAddress)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	if c.Bool("with-worker") {
		worker, err := sys.NewWorker(ctx)
		if err != nil {
			server.Stop()
			return err
		}
		defer worker.Release()
		g.Go(func() error {
			return worker.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		server.GracefulStop()
		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Consume document events and index their chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "group-id",
				Usage: "Consumer group",
			},
			&cli.IntFlag{
				Name:  "pool-size",
				Usage: "Concurrent AI calls per chunk",
			},
			&cli.Float64Flag{
				Name:  "rate-limit",
				Usage: "Maximum AI calls per second (0 disables)",
			},
		},
		Action: workerAction,
	}
}

func workerAction(c *cli.Context) error {
	cfg, err := configFrom(c)
	if err != nil {
		return err
	}
	overrideString(c, "group-id", &cfg.GroupID)
	if c.IsSet("pool-size") {
		cfg.IngestWorkers = c.Int("pool-size")
	}
	if c.IsSet("rate-limit") {
		cfg.AIRateLimit = c.Float64("rate-limit")
	}

	sys, err := docindex.Open(c.Context, cfg)
	if err != nil {
		return err
	}
	defer sys.Close()

	worker, err := sys.NewWorker(c.Context)
	if err != nil {
		return err
	}
	defer worker.Release()

	return worker.Run(c.Context)
}
