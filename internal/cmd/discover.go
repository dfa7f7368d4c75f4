package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/quill-social/quill/pkg/config"
	"github.com/quill-social/quill/pkg/kvstore"
	"github.com/quill-social/quill/pkg/logger"
	"github.com/quill-social/quill/pkg/service"
	"github.com/spf13/cobra"
)

// redisKeyPrefix namespaces discovery state in a shared redis
const redisKeyPrefix = "quill:"

var resetYes bool

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find people to follow, one profile at a time",
	Long: `Show suggested profiles one at a time. Follow or pass on each.
Passed profiles come back after 72 hours and you get 20 swipes a day.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDiscover(cmd.Context(), func(ds *service.DiscoverService) error {
			return ds.Run(cmd.Context())
		})
	},
}

var discoverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's swipes and profiles cooling down",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDiscover(cmd.Context(), func(ds *service.DiscoverService) error {
			return ds.Status(cmd.Context())
		})
	},
}

var discoverResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear passed profiles and today's swipe count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDiscover(cmd.Context(), func(ds *service.DiscoverService) error {
			return ds.Reset(cmd.Context(), resetYes)
		})
	},
}

// storageOptions reads the storage.* keys. An empty storage.path picks a
// file next to the config.
func storageOptions() kvstore.Options {
	opts := kvstore.Options{
		Backend:       config.GetString("storage.backend"),
		Path:          config.GetString("storage.path"),
		RedisAddr:     config.GetString("storage.redis_addr"),
		RedisPassword: config.GetString("storage.redis_password"),
		RedisDB:       config.GetInt("storage.redis_db"),
		KeyPrefix:     redisKeyPrefix,
	}
	if opts.Path == "" {
		name := "state.json"
		if opts.Backend == kvstore.BackendSQLite {
			name = "state.db"
		}
		opts.Path = filepath.Join(config.GetConfigDir(), name)
	}
	return opts
}

func withDiscover(ctx context.Context, fn func(ds *service.DiscoverService) error) error {
	opts := storageOptions()
	store, err := kvstore.Open(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", opts.Backend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage", "backend", opts.Backend, "err", err)
		}
	}()

	return fn(service.NewDiscoverService(store))
}

func init() {
	discoverResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip confirmation")

	discoverCmd.AddCommand(discoverStatusCmd)
	discoverCmd.AddCommand(discoverResetCmd)
}
