package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/aatuh/pagecookie"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Printf("pagecookied: %s\n", err.Error())
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "pagecookied"
	app.HelpName = "pagecookied"
	app.Usage = "demo server for page-scoped cookies"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "addr",
			Value:  ":8000",
			Usage:  "listen address",
			EnvVar: "PAGECOOKIE_ADDR",
		},
		cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "dotenv file loaded before reading PAGECOOKIE_* settings",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  "info",
			Usage:  "panic, fatal, error, warn, info, debug or trace",
			EnvVar: "PAGECOOKIE_LOG_LEVEL",
		},
	}
	app.Action = serve
	return app
}

func serve(c *cli.Context) error {
	if err := loadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	level, err := log.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logger := log.New()
	logger.SetLevel(level)

	cfg, err := pagecookie.ConfigFromEnv(os.LookupEnv)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           newHandler(cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// loadEnvFile loads path into the environment. A missing file is not an
// error; existing variables are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
