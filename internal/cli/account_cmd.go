package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vozlia/control/internal/services"
)

// accountCmd represents the account command group
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Email account management",
	Long:  `Provision and list email account records for the primary user.`,
}

var accountAddFlags struct {
	providerType string
	emailAddress string
	displayName  string
	imapHost     string
	imapPort     int
	imapSSL      bool
	smtpHost     string
	smtpPort     int
	smtpSSL      bool
	username     string
	password     string
}

// accountAddCmd provisions a new email account row for the primary user
var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Provision an email account",
	Long:  `Create an email account record for the primary user. An optional password is stored encrypted.`,
	Run: func(cmd *cobra.Command, args []string) {
		if userService == nil || accountService == nil {
			fmt.Fprintln(os.Stderr, "error: services not initialized")
			os.Exit(1)
		}

		user, err := userService.GetOrCreatePrimaryUser()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to resolve primary user: %v\n", err)
			os.Exit(1)
		}

		account, err := accountService.CreateAccount(services.CreateAccountInput{
			UserID:       user.ID,
			ProviderType: accountAddFlags.providerType,
			EmailAddress: accountAddFlags.emailAddress,
			DisplayName:  accountAddFlags.displayName,
			IMAPHost:     accountAddFlags.imapHost,
			IMAPPort:     accountAddFlags.imapPort,
			IMAPSSL:      accountAddFlags.imapSSL,
			SMTPHost:     accountAddFlags.smtpHost,
			SMTPPort:     accountAddFlags.smtpPort,
			SMTPSSL:      accountAddFlags.smtpSSL,
			Username:     accountAddFlags.username,
			Password:     accountAddFlags.password,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to create account: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Account created:")
		fmt.Printf("  ID:       %s\n", account.ID)
		fmt.Printf("  Address:  %s\n", account.EmailAddress)
		fmt.Printf("  Provider: %s\n", account.ProviderType)
	},
}

// accountListCmd lists the primary user's email accounts
var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List email accounts",
	Long:  `Display the email account records of the primary user, most recent first.`,
	Run: func(cmd *cobra.Command, args []string) {
		if userService == nil || accountService == nil {
			fmt.Fprintln(os.Stderr, "error: services not initialized")
			os.Exit(1)
		}

		user, err := userService.GetOrCreatePrimaryUser()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to resolve primary user: %v\n", err)
			os.Exit(1)
		}

		accounts, err := accountService.ListAccounts(user.ID, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to list accounts: %v\n", err)
			os.Exit(1)
		}

		if len(accounts) == 0 {
			fmt.Println("No email accounts.")
			return
		}

		fmt.Println("Email accounts:")
		fmt.Println("--------------------------------------------------------------------------------")
		fmt.Printf("%-36s %-30s %-8s %-7s %s\n", "ID", "Address", "Primary", "Active", "Created")
		fmt.Println("--------------------------------------------------------------------------------")
		for _, a := range accounts {
			createdAt := a.CreatedAt.Format("2006-01-02 15:04:05")
			fmt.Printf("%-36s %-30s %-8t %-7t %s\n", a.ID, a.EmailAddress, a.IsPrimary, a.IsActive, createdAt)
		}
		fmt.Println("--------------------------------------------------------------------------------")
		fmt.Printf("%d account(s)\n", len(accounts))
	},
}

func init() {
	accountAddCmd.Flags().StringVar(&accountAddFlags.providerType, "provider", "imap", "provider type (imap, gmail)")
	accountAddCmd.Flags().StringVar(&accountAddFlags.emailAddress, "email-address", "", "email address (required)")
	accountAddCmd.Flags().StringVar(&accountAddFlags.displayName, "display-name", "", "display name")
	accountAddCmd.Flags().StringVar(&accountAddFlags.imapHost, "imap-host", "", "IMAP host")
	accountAddCmd.Flags().IntVar(&accountAddFlags.imapPort, "imap-port", 993, "IMAP port")
	accountAddCmd.Flags().BoolVar(&accountAddFlags.imapSSL, "imap-ssl", true, "use SSL for IMAP")
	accountAddCmd.Flags().StringVar(&accountAddFlags.smtpHost, "smtp-host", "", "SMTP host")
	accountAddCmd.Flags().IntVar(&accountAddFlags.smtpPort, "smtp-port", 587, "SMTP port")
	accountAddCmd.Flags().BoolVar(&accountAddFlags.smtpSSL, "smtp-ssl", true, "use SSL for SMTP")
	accountAddCmd.Flags().StringVar(&accountAddFlags.username, "username", "", "login username")
	accountAddCmd.Flags().StringVar(&accountAddFlags.password, "password", "", "login password (stored encrypted)")
	_ = accountAddCmd.MarkFlagRequired("email-address")

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
}
