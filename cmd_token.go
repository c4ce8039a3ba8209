package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	tokenCmd.AddCommand(tokenSaveCmd, tokenClearCmd)
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the remembered Github token",
}

var tokenSaveCmd = &cobra.Command{
	Use:   "save TOKEN",
	Short: "Check a personal access token and remember it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.Close()

		username, err := a.dashboard.Login(cmd.Context(), args[0], true)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "token saved for", titleStyle.Render(username))
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the remembered token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.dashboard.Logout(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
		return nil
	},
}
