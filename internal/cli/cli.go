package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vozlia/control/internal/config"
	"github.com/vozlia/control/internal/services"
	"gorm.io/gorm"
)

var (
	db             *gorm.DB
	cfg            *config.Config
	userService    *services.UserService
	accountService *services.AccountService
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vozlia-control",
	Short: "Vozlia control plane service",
	Long: `Vozlia control plane: administrative API for voice-agent settings
and connected email accounts.

The command line tool provides:
  - user management: show (and provision) the primary admin user
  - account management: provision and list email account records

Examples:
  vozlia-control user show          # show the primary user
  vozlia-control account list       # list email accounts
  vozlia-control account add --email-address you@example.com`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config

	userService = services.NewUserService(db, cfg.AdminEmail)
	accountService = services.NewAccountService(db, cfg.GetEncryptionKey())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(accountCmd)
}
