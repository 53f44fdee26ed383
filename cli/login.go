package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bassamadnan/lumimail/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize lumimail to read your Gmail",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Gmail credentials",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	oauthCfg, err := auth.ConfigFromFile(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	headline("login")
	fmt.Println()
	c, err := auth.Login(cmd.Context(), oauthCfg, creds, uuid.NewString(), os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("Credentials stored", "backend", cfg.TokenBackend, "expiry", c.Expiry)
	PrintSuccessf("Signed in, credentials stored in the %s backend", cfg.TokenBackend)
	return nil
}

func runLogout(*cobra.Command, []string) error {
	creds, err := openCredentials(cfg)
	if err != nil {
		return err
	}
	if err := creds.Clear(); err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	PrintSuccess("Signed out")
	return nil
}
