package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/workgrid/internal/cli"
	"github.com/alexanderramin/workgrid/internal/config"
	"github.com/alexanderramin/workgrid/internal/db"
	"github.com/alexanderramin/workgrid/internal/repository"
	"github.com/alexanderramin/workgrid/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configFile picks --config out of the arguments before cobra parses them;
// the session has to exist before any command runs.
func configFile(args []string) string {
	fs := pflag.NewFlagSet("workgrid", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.String(cli.ConfigFlag, "", "")
	_ = fs.Parse(args)
	return *path
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run() error {
	cfg, err := config.Load(config.Options{File: configFile(os.Args[1:])})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var observers []service.UseCaseObserver
	if cfg.Log.Enabled {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr, cfg.Log.SlogLevel()))
	}

	session := service.NewSession(repository.NewSQLiteStore(database), service.SessionOptions{
		Gantt:          cfg.Gantt,
		StatusKeywords: &cfg.Columns.StatusKeywords,
		MaxDepth:       cfg.Hierarchy.MaxDepth,
		Warnings:       service.NewLogWarningSink(os.Stderr),
		UnitOfWork:     db.NewSQLiteUnitOfWork(database),
	}, observers...)
	if err := session.Load(ctx); err != nil {
		return fmt.Errorf("loading workspace: %w", err)
	}

	app := &cli.App{
		Session:     session,
		Interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
		DBPath:      cfg.DBPath,
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
