package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"inventario/internal/config"
	"inventario/internal/infrastructure/logger"
	"inventario/internal/infrastructure/mysql"
	"inventario/internal/product/repository"
	"inventario/internal/product/seed"
)

// session holds what every subcommand needs once the database answers.
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *sql.DB
	gateway *mysql.Gateway
}

func (s *session) close() {
	s.gateway.Disconnect()
	s.logger.Sync()
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "inventario-admin",
		Short:         "Maintenance commands for the inventario database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("database-url", "", "overrides DATABASE_URL")
	root.PersistentFlags().String("log-level", "", "overrides LOG_LEVEL")
	_ = v.BindPFlag("database-url", root.PersistentFlags().Lookup("database-url"))
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newMigrateCmd(v), newSeedCmd(v))
	return root
}

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the productos and purchases tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer s.close()

			return mysql.Migrate(cmd.Context(), s.db, s.logger)
		},
	}
}

func newSeedCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo catalogue, skipping names that already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer s.close()

			if v.GetBool("migrate") {
				if err := mysql.Migrate(cmd.Context(), s.db, s.logger); err != nil {
					return err
				}
			}

			repo := repository.NewMySQLRepository(s.db, s.cfg.Database.LockRetryAttempts, s.logger)
			created, err := seed.Run(cmd.Context(), repo, s.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d products created\n", created)
			return nil
		},
	}

	cmd.Flags().Bool("migrate", false, "apply migrations before seeding")
	_ = v.BindPFlag("migrate", cmd.Flags().Lookup("migrate"))
	return cmd
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if url := v.GetString("database-url"); url != "" {
		cfg.Database.URL = url
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

func connect(ctx context.Context, v *viper.Viper) (*session, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	db, err := mysql.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	gateway := mysql.NewGateway(db, cfg.Database.ConnectAttempts, cfg.Database.RetryDelay, zapLogger)
	if err := gateway.Connect(ctx); err != nil {
		gateway.Disconnect()
		return nil, err
	}

	return &session{cfg: cfg, logger: zapLogger, db: db, gateway: gateway}, nil
}
