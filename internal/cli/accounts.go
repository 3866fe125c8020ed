package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Business Profile accounts",
	}
	cmd.AddCommand(newAccountsListCmd())
	cmd.AddCommand(newAccountsGetCmd())
	return cmd
}

func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accessible accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			accounts, err := s.client.ListAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			if jsonFlag {
				return printJSON(accounts)
			}
			if len(accounts) == 0 {
				fmt.Println("No accounts found.")
				return nil
			}
			return writeAccounts(os.Stdout, accounts)
		},
	}
}

func newAccountsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [account]",
		Short: "Show one account, e.g. accounts/123",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			acct, err := s.client.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}
			return printJSON(acct)
		},
	}
}
