package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrave1/RoomBook/internal/application/config"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/middleware"
)

var tokenTTL time.Duration

// tokenCmd выпускает токен тем же секретом, что и auth-сервис. Нужен для локальной разработки.
var tokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Issue a signed access token for an email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.New()
		if err != nil {
			log.Fatalf("could not load config: %v", err)
		}

		token, err := middleware.NewToken(cfg.JWTSecret, args[0], tokenTTL)
		if err != nil {
			log.Fatalf("sign token: %v", err)
		}

		fmt.Println(token)
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
