package cmd

import (
	"bufio"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/toyinlola/topsis/pkg/cli"
)

var credUsername string

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage the SMTP password in the OS keyring",
	Long: `Credentials stores or removes the SMTP password used for result emails.

The password is kept in the OS keyring under the service "topsis", keyed by
the SMTP username (mail.username in the config, or --username). The
environment variable named by mail.password_env takes precedence at runtime.`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Read a password from stdin and store it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := credentialsUser()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "SMTP password for %s: ", user)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Scan()
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("credentials: reading password: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr())

		if err := cli.StoreSMTPPassword(user, scanner.Text()); err != nil {
			return err
		}
		slog.Info("smtp password stored", "user", user)
		return nil
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := credentialsUser()
		if err != nil {
			return err
		}
		if err := cli.DeleteSMTPPassword(user); err != nil {
			return err
		}
		slog.Info("smtp password removed", "user", user)
		return nil
	},
}

func init() {
	credentialsCmd.PersistentFlags().StringVar(&credUsername, "username", "", "SMTP username, overrides mail.username")
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func credentialsUser() (string, error) {
	if credUsername != "" {
		return credUsername, nil
	}
	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return "", fmt.Errorf("credentials: %w", err)
	}
	if cfg.Mail.Username == "" {
		return "", cli.ErrNoUsername
	}
	return cfg.Mail.Username, nil
}
