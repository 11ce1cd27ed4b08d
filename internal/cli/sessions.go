package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zoobzio/detent/internal/config"
	"github.com/zoobzio/detent/pkg/session"
)

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List or delete saved sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "list",
		Short:        "List saved sessions",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openSessions(rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()

			names, err := db.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				if names == nil {
					names = []string{}
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(names)
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "delete <name>",
		Short:        "Delete a saved session",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openSessions(rootOpts)
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Delete(cmd.Context(), args[0])
		},
	})

	return cmd
}

func openSessions(rootOpts *RootOptions) (*session.DB, error) {
	cfg, err := config.Load(rootOpts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Session.Path == "" {
		return nil, fmt.Errorf("session.path is not configured")
	}
	return session.Open(cfg.Session.Path)
}
