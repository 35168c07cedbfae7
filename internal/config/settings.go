package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/khata-app/khata/internal/common"
)

// Viper keys used across the CLI.
const (
	KeyDatabasePath         = "database.path"
	KeyLogLevel             = "logging.level"
	KeyLogFormat            = "logging.format"
	KeyImplicitStockPayable = "accounting.implicit_stock_payable"
)

// SetDefaults registers default values for all settings. Call once before
// reading any key.
func SetDefaults() {
	viper.SetDefault(KeyDatabasePath, "~/.local/share/khata/khata.db")
	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyLogFormat, "console")
	viper.SetDefault(KeyImplicitStockPayable, true)
}

// DatabasePath returns the configured database path with ~ and environment
// variables expanded.
func DatabasePath() (string, error) {
	path := viper.GetString(KeyDatabasePath)
	if path == "" {
		return "", fmt.Errorf("%w: %s is not set", common.ErrMissingConfig, KeyDatabasePath)
	}
	return ExpandPath(path), nil
}

// ImplicitStockPayable reports whether supplier positions should include
// the estimated value of unsold stock from that supplier.
func ImplicitStockPayable() bool {
	return viper.GetBool(KeyImplicitStockPayable)
}
