package cmd

import (
	"log"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/qrave1/RoomBook/internal/application/config"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [command] [args]",
	Short: "Migrate the rooms/bookings schema (default: up)",
	Long: "Runs a goose command against the booking database. Without arguments applies all pending migrations,\n" +
		"including the exclusion constraint that keeps bookings of one room from overlapping.",
	Run: func(cmd *cobra.Command, args []string) {
		command := "up"
		if len(args) > 0 {
			command, args = args[0], args[1:]
		}

		cfg, err := config.New()
		if err != nil {
			log.Fatalf("could not load config: %v", err)
		}

		goose.SetBaseFS(migrations.MigrationsFS)

		db, err := goose.OpenDBWithDriver("pgx", cfg.Postgres.DSN())
		if err != nil {
			log.Fatalf("goose: failed to open DB: %v", err)
		}

		defer func() {
			if err := db.Close(); err != nil {
				log.Fatalf("goose: failed to close DB: %v", err)
			}
		}()

		if err = goose.RunContext(cmd.Context(), command, db, ".", args...); err != nil {
			log.Fatalf("goose: %s failed: %v", command, err)
		}

		version, err := goose.GetDBVersionContext(cmd.Context(), db)
		if err != nil {
			log.Fatalf("goose: read schema version: %v", err)
		}

		slog.Info("booking schema migrated", slog.String("command", command), slog.Int64("version", version))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
