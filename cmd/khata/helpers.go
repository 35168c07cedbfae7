package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/khata-app/khata/internal/config"
	"github.com/khata-app/khata/internal/model"
	"github.com/khata-app/khata/internal/position"
	"github.com/khata-app/khata/internal/service"
	"github.com/khata-app/khata/internal/storage"
)

const dateFlagLayout = "2006-01-02"

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// positionOptions builds the position engine options from config.
func positionOptions() position.Options {
	opts := position.DefaultOptions()
	opts.IncludeImplicitStockPayable = config.ImplicitStockPayable()
	return opts
}

// dateFlag parses a --date style flag, defaulting to today when empty.
func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return model.Day(time.Now()), nil
	}
	parsed, err := time.Parse(dateFlagLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	return parsed, nil
}

// idArg parses a positional numeric ID argument.
func idArg(args []string, what string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID %q", what, args[0])
	}
	return id, nil
}
