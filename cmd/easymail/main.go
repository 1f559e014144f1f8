package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/easymail/internal/model"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	host       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "easymail",
		Short:         "Terminal client for the email assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(flags)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", model.DefaultConfigPath(), "Path to the config file")
	cmd.PersistentFlags().StringVar(&flags.host, "host", "", "API host, overrides the config file")

	cmd.AddCommand(newContactsCmd(flags))
	cmd.AddCommand(newAccountsCmd(flags))
	cmd.AddCommand(newLogoutCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))

	return cmd
}
