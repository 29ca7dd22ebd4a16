// Package config builds typed settings from viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"lotsweep/internal/common"
	"lotsweep/internal/session"
	"lotsweep/internal/sweep"
)

// MarketplaceSettings configures the external marketplace client.
type MarketplaceSettings struct {
	BaseURL string
	Token   string
}

// SessionSettings configures selection record lifetime.
type SessionSettings struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// Settings is the full application configuration.
type Settings struct {
	Marketplace MarketplaceSettings
	Sweep       sweep.Config
	Session     SessionSettings

	// ShowMenuButton controls whether a surrounding menu offers the bulk
	// delete affordance. Presentation-only; carried for config parity.
	ShowMenuButton bool
}

// SetDefaults registers every configuration default with viper. Call once
// before reading the config file.
func SetDefaults() {
	viper.SetDefault("marketplace.base_url", "")
	viper.SetDefault("marketplace.token", "")
	viper.SetDefault("sweep.include_active", false)
	viper.SetDefault("sweep.include_inactive", true)
	viper.SetDefault("sweep.listing_delay", 700*time.Millisecond)
	viper.SetDefault("sweep.category_delay", 1500*time.Millisecond)
	viper.SetDefault("sweep.show_menu_button", true)
	viper.SetDefault("session.ttl", session.DefaultTTL)
	viper.SetDefault("session.cleanup_interval", session.DefaultCleanupInterval)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// Load reads the settings out of viper and validates them.
func Load() (*Settings, error) {
	settings := &Settings{
		Marketplace: MarketplaceSettings{
			BaseURL: viper.GetString("marketplace.base_url"),
			Token:   viper.GetString("marketplace.token"),
		},
		Sweep: sweep.Config{
			IncludeActive:   viper.GetBool("sweep.include_active"),
			IncludeInactive: viper.GetBool("sweep.include_inactive"),
			ListingDelay:    viper.GetDuration("sweep.listing_delay"),
			CategoryDelay:   viper.GetDuration("sweep.category_delay"),
		},
		Session: SessionSettings{
			TTL:             viper.GetDuration("session.ttl"),
			CleanupInterval: viper.GetDuration("session.cleanup_interval"),
		},
		ShowMenuButton: viper.GetBool("sweep.show_menu_button"),
	}

	if settings.Sweep.ListingDelay < 0 || settings.Sweep.CategoryDelay < 0 {
		return nil, fmt.Errorf("%w: pacing delays must not be negative", common.ErrInvalidConfig)
	}

	return settings, nil
}
