// sitectl 管理验收测试站点：安装、删除、开关测试模式与重置数据。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/service"
	"lms_backend/internal/testsite"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"os"

	"github.com/spf13/cobra"
)

var configDir string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Manage the acceptance test site",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configDir, "config", "c", "configs", "directory containing config.yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Install the test site (fails if tables already exist)",
			RunE: withSite(func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error {
				if err := u.InstallSite(ctx); err != nil {
					if errors.Is(err, util.ErrSiteInstalled) {
						return fmt.Errorf("the test site is already installed, drop it first: %w", err)
					}
					return err
				}
				cmd.Println("Test site installed")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "drop",
			Short: "Drop all test site tables and purge the data root",
			RunE: withSite(func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error {
				if err := u.DropSite(ctx); err != nil {
					return err
				}
				cmd.Println("Test site dropped")
				return nil
			}),
		},
		&cobra.Command{
			Use:     "enable",
			Aliases: []string{"start"},
			Short:   "Enable test mode for the data root",
			RunE: withSite(func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error {
				if err := u.StartTestMode(ctx); err != nil {
					return err
				}
				cmd.Println("Test mode enabled")
				return nil
			}),
		},
		&cobra.Command{
			Use:     "disable",
			Aliases: []string{"stop"},
			Short:   "Disable test mode",
			RunE: withSite(func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error {
				stopped, err := u.StopTestMode()
				if err != nil {
					return err
				}
				if stopped {
					cmd.Println("Test mode disabled")
				} else {
					cmd.Println("Test mode was not enabled")
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset all data to the freshly installed state",
			RunE: withSite(func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error {
				if err := u.ResetAllData(ctx); err != nil {
					return err
				}
				cmd.Println("Test site data reset")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "info",
			Short: "Print test site status as JSON",
			RunE: withSite(func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error {
				info, err := u.SiteInfo(ctx)
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				return nil
			}),
		},
	)
	return root
}

type siteFunc func(ctx context.Context, cmd *cobra.Command, u *testsite.Util) error

// withSite 加载配置并连接数据库与缓存后执行子命令
func withSite(fn siteFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		if cfg.TestSite.DataRoot == "" {
			return errors.New("test_site.dataroot is not configured")
		}

		db, err := database.Open(&cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		var cache testsite.Flusher
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		if rdb != nil {
			defer rdb.Close()
			cache = service.NewRedisStructureCache(rdb, cfg.Quiz.EditCacheTTL)
		}

		u := testsite.New(db, cfg.TestSite.DataRoot, cfg.TestSite.SiteName, cache)
		return fn(cmd.Context(), cmd, u)
	}
}
