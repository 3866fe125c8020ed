package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ourdigital/gbp-toolkit/internal/store"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the OAuth token",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRevokeCmd())
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var callback bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize gbp with your Google account",
		Long: "Authorize gbp with your Google account. A stored token is reused or refreshed; " +
			"otherwise the authorization URL is printed and the code is read from stdin, " +
			"or captured on the redirect URI with --callback.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if callback {
				cfg.Auth.CallbackServer = true
			}

			creds, err := newAuthenticator(cfg, newLogger()).Authenticate(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			expiry := ""
			if tok := creds.Token(); !tok.Expiry.IsZero() {
				expiry = tok.Expiry.Format(time.RFC3339)
			}
			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "login", Expiry: expiry})
			}
			fmt.Printf("%s Authenticated", okMark())
			if expiry != "" {
				fmt.Printf(" (token valid until %s)", expiry)
			}
			fmt.Println()
			return nil
		},
	}
	cmd.Flags().BoolVar(&callback, "callback", false, "capture the code with a local server on the redirect URI")
	return cmd
}

func newAuthRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the token and delete it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := newAuthenticator(cfg, newLogger()).Revoke(cmd.Context()); err != nil {
				return fmt.Errorf("failed to revoke credentials: %w", err)
			}
			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "revoke"})
			}
			fmt.Println("Credentials revoked.")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored token state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tok, err := newAuthenticator(cfg, newLogger()).Stored()
			if err != nil && !errors.Is(err, store.ErrTokenNotFound) {
				return err
			}

			st := toJSONAuthStatus(tok, cfg.Auth.TokenStore)
			if jsonFlag {
				return printJSON(st)
			}
			if !st.Authenticated {
				fmt.Println("Not authenticated. Run 'gbp auth login' first.")
				return nil
			}
			state := successStyle.Render("valid")
			if !st.Valid {
				state = errorStyle.Render("expired")
			}
			fmt.Printf("Token:   %s\n", state)
			if st.Expiry != "" {
				fmt.Printf("Expiry:  %s\n", st.Expiry)
			}
			fmt.Printf("Refresh: %t\n", st.HasRefreshToken)
			fmt.Printf("Store:   %s\n", st.TokenStore)
			return nil
		},
	}
}
