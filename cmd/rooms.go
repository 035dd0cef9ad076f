package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/qrave1/RoomBook/internal/application/config"
	"github.com/qrave1/RoomBook/internal/infra/adapters/excel"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/RoomBook/internal/usecase"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Manage the room catalog from spreadsheets",
}

var roomsImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Create or update rooms from a spreadsheet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		roomUsecase, closeDB := mustRoomUsecase(cmd)
		defer closeDB()

		f, err := os.Open(args[0])
		if err != nil {
			log.Fatalf("open %s: %v", args[0], err)
		}
		defer f.Close()

		rows, err := excel.ReadRooms(f)
		if err != nil {
			log.Fatalf("read %s: %v", args[0], err)
		}

		result, err := roomUsecase.ImportRooms(cmd.Context(), rows)
		if err != nil {
			log.Fatalf("import rooms: %v", err)
		}

		fmt.Printf("created: %d, updated: %d, skipped: %d\n", result.Created, result.Updated, len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Printf("  line %d: %s\n", s.Line, s.Error)
		}
	},
}

var roomsTemplateCmd = &cobra.Command{
	Use:   "template <file.xlsx>",
	Short: "Write the import header and the current rooms to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		roomUsecase, closeDB := mustRoomUsecase(cmd)
		defer closeDB()

		rooms, err := roomUsecase.ListRooms(cmd.Context())
		if err != nil {
			log.Fatalf("list rooms: %v", err)
		}

		f, err := os.Create(args[0])
		if err != nil {
			log.Fatalf("create %s: %v", args[0], err)
		}
		defer f.Close()

		if err = excel.WriteRooms(f, rooms); err != nil {
			log.Fatalf("write %s: %v", args[0], err)
		}

		fmt.Printf("wrote %d rooms to %s\n", len(rooms), args[0])
	},
}

func mustRoomUsecase(cmd *cobra.Command) (usecase.RoomUsecase, func()) {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	db, err := postgres.NewPostgres(cmd.Context(), cfg.Postgres.DSN())
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}

	return usecase.NewRoomUsecase(repository.NewRoomRepo(db), cfg.Booking.StoreTimeout), func() { _ = db.Close() }
}

func init() {
	roomsCmd.AddCommand(roomsImportCmd, roomsTemplateCmd)
	rootCmd.AddCommand(roomsCmd)
}
