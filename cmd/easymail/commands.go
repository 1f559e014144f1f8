package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/easymail/internal/api"
	"github.com/nhle/easymail/internal/model"
	"github.com/nhle/easymail/internal/store"
)

// apiError formats a backend failure the way the UI toasts it.
func apiError(action string, err error) error {
	return fmt.Errorf("%s: %s", action, api.ErrorMessage(err, api.DefaultErrorMessage))
}

func newContactsCmd(flags *rootFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Print one page of contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags, consoleLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			p, err := e.client.ListContacts(cmd.Context(), e.cfg.Contacts.PerPage, page)
			if err != nil {
				return apiError("listing contacts", err)
			}

			if len(p.Items) == 0 {
				fmt.Fprintln(os.Stderr, "No contacts found")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCOMPANY")
			for _, c := range p.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Email, c.Company)
			}
			tw.Flush()

			fmt.Fprintf(os.Stderr, "Page %d of %d\n", p.Page, max(p.Pages, 1))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number to print")

	return cmd
}

func newAccountsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Print linked mail accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags, consoleLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			accounts, err := e.client.ListLinkedAccounts(cmd.Context())
			if err != nil {
				return apiError("listing linked accounts", err)
			}

			if len(accounts) == 0 {
				fmt.Fprintln(os.Stderr, "No linked accounts")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSERVICE\tACCOUNT")
			for _, a := range accounts {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", a.ID, a.Service, a.DisplayName())
			}
			tw.Flush()
			return nil
		},
	}
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget stored cookies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags, consoleLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			resp, err := e.client.Logout(cmd.Context())
			if err != nil && !api.IsUnauthorized(err) {
				return apiError("logging out", err)
			}

			e.client.ClearSession()
			if e.vault != nil {
				if err := e.vault.ClearSession(); err != nil {
					e.log.Warn().Err(err).Msg("Failed to clear stored session")
				}
			}
			if err := e.store.DeleteValue(cmd.Context(), store.KeyGravatarURL); err != nil {
				e.log.Warn().Err(err).Msg("Failed to drop cached avatar")
			}

			msg := "Logged out"
			if resp != nil && resp.Message != "" {
				msg = resp.Message
			}
			fmt.Println(msg)
			return nil
		},
	}
}

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flags.configPath); err == nil && !force {
				return fmt.Errorf("config %s already exists, use --force to overwrite", flags.configPath)
			}
			if err := model.SaveConfig(flags.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Println(flags.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
