// Command panaguas runs the umbrella lending service.
//
//	panaguas [serve]            run the HTTP API, notification dispatcher and overdue job
//	panaguas migrate            apply the event store migrations
//	panaguas seed               apply SEED_FILE
//	panaguas admin-token [-subject ops] [-ttl 12h]
//	                            print an admin bearer token signed with ADMIN_JWT_SECRET
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // CAMPUS_TIMEZONE on images without zoneinfo

	"github.com/mrcrpro/panaguas/internal/app"
	"github.com/mrcrpro/panaguas/internal/config"
	"github.com/mrcrpro/panaguas/internal/logger"
	"github.com/mrcrpro/panaguas/internal/middleware"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	command := app.ParseCommand(args)
	if command == app.CommandUnknown {
		fmt.Fprintf(os.Stderr, "unknown command %q, use serve, migrate, seed or admin-token\n", args[0])
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
		return 1
	}

	log := logger.New(os.Stdout, cfg.LogLevel, app.ServiceName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case app.CommandMigrate:
		err = app.Migrate(cfg)
	case app.CommandAdminToken:
		err = printAdminToken(cfg, args[1:])
	case app.CommandSeed:
		err = seed(ctx, cfg, log)
	default:
		err = serve(ctx, cfg, log)
	}

	if err != nil {
		log.Error("exiting with error", "command", string(command), "error", err.Error())
		return 1
	}

	return 0
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := app.New(ctx, cfg, log, app.WithVersion(version))
	if err != nil {
		return err
	}

	return a.Run(ctx)
}

func seed(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := app.New(ctx, cfg, log, app.WithVersion(version))
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	_, err = a.Seed(ctx)

	return err
}

func printAdminToken(cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet(string(app.CommandAdminToken), flag.ContinueOnError)
	subject := flags.String("subject", "admin", "subject claim of the token")
	ttl := flags.Duration("ttl", 12*time.Hour, "token lifetime")

	if err := flags.Parse(args); err != nil {
		return err
	}

	token, err := middleware.IssueAdminToken([]byte(cfg.AdminJWTSecret), *subject, *ttl, time.Now())
	if err != nil {
		return err
	}

	fmt.Println(token)

	return nil
}
