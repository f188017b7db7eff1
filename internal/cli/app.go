package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"ticklite/internal/config"
	"ticklite/internal/storage"
	"ticklite/internal/store"
)

const closeTimeout = 10 * time.Second

// app is the wiring shared by every command: config, logger, the sqlite
// repository and the task store on top of it.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	db      *storage.Store
	store   *store.Store
	logFile *os.File
}

// openApp loads the config and opens the task store. logTo receives log
// output; a nil logTo sends logs to the file next to the database, which
// keeps them off a screen owned by the terminal UI.
func openApp(ctx context.Context, opts *RootOptions, logTo io.Writer) (*app, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{cfg: cfg, db: db}
	if logTo == nil {
		f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		logTo = f
	}

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(logTo, &slog.HandlerOptions{Level: level}))
	a.log.Debug("config loaded", "path", path, "db", cfg.DBPath)

	storeOpts := []store.Option{store.WithLogger(a.log)}
	if cfg.SeedExamples {
		storeOpts = append(storeOpts, store.WithSeed(store.ExampleSeed(time.Now())))
	}
	st, err := store.Open(ctx, db, storeOpts...)
	if err != nil {
		db.Close()
		if a.logFile != nil {
			a.logFile.Close()
		}
		return nil, err
	}
	a.store = st
	return a, nil
}

// close waits for pending saves and releases the database.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := a.store.Close(ctx)
	if cerr := a.db.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}

// withApp opens the app, runs fn and closes the app, keeping fn's error
// first.
func withApp(ctx context.Context, opts *RootOptions, logTo io.Writer, fn func(*app) error) (err error) {
	a, err := openApp(ctx, opts, logTo)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = fmt.Errorf("save tasks: %w", cerr)
		}
	}()
	return fn(a)
}

func resolveID(st *store.Store, arg string) (string, error) {
	id, err := st.Resolve(arg)
	if err != nil {
		return "", fmt.Errorf("resolve task id: %w", err)
	}
	return id, nil
}
