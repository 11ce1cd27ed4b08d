package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/zoobzio/detent/internal/config"
	"github.com/zoobzio/detent/internal/logging"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	Automate bool
	Preset   string
	Session  string
	NoSave   bool
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the interactive slider demo",
		Long: `Run the configured parameters as terminal sliders.

Every parameter gets a coarse and a fine slider sharing one group. Edits are
confirmed through the parameter's rules before they reach the store, while
automation, presets and an optional redis surface write from other goroutines.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			return runDemo(cmd.Context(), cfg)
		},
	}

	cmd.Flags().BoolVar(&opts.Automate, "automate", false, "sweep the automation parameter")
	cmd.Flags().StringVar(&opts.Preset, "preset", "", "preset file to follow")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session name to restore and save")
	cmd.Flags().BoolVar(&opts.NoSave, "no-save", false, "do not save the session on exit")

	return cmd
}

// apply lets explicitly set flags override the loaded configuration.
func (o *DemoOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("automate") {
		cfg.Automation.Enabled = o.Automate
	}
	if flags.Changed("preset") {
		cfg.Preset.Path = o.Preset
	}
	if flags.Changed("session") {
		cfg.Session.Name = o.Session
	}
	if o.NoSave {
		cfg.Session.Save = false
	}
}

func runDemo(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.NewLogger(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Close()

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}

	program := tea.NewProgram(app.Model(), tea.WithAltScreen(), tea.WithContext(ctx))
	if err := app.Start(ctx, program); err != nil {
		return errors.Join(err, app.Shutdown(context.Background()))
	}

	_, runErr := program.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	if runErr != nil {
		runErr = fmt.Errorf("run ui: %w", runErr)
	}
	return errors.Join(runErr, app.Shutdown(context.Background()))
}
