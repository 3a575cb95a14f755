package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// userCmd represents the user command group
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Primary user management",
	Long:  `Inspect the primary admin user this deployment is configured for.`,
}

// userShowCmd resolves and prints the primary user, creating it on first use
var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the primary user",
	Long:  `Resolve the primary admin user from ADMIN_EMAIL, creating it if it does not exist yet, and print it.`,
	Run: func(cmd *cobra.Command, args []string) {
		if userService == nil {
			fmt.Fprintln(os.Stderr, "error: user service not initialized")
			os.Exit(1)
		}

		user, err := userService.GetOrCreatePrimaryUser()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to resolve primary user: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Primary user:")
		fmt.Printf("  ID:      %s\n", user.ID)
		fmt.Printf("  Email:   %s\n", user.Email)
		fmt.Printf("  Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	},
}

func init() {
	userCmd.AddCommand(userShowCmd)
}
