package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zoobzio/detent/internal/config"
	"github.com/zoobzio/detent/pkg/rules"
)

// ParamView is the printable form of a configured parameter.
type ParamView struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Start   float64  `json:"start"`
	End     float64  `json:"end"`
	Default string   `json:"default"`
	Centre  string   `json:"centre"`
	Rules   []string `json:"rules,omitempty"`
}

// NewParamsCommand creates the params command.
func NewParamsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "params",
		Short:        "List configured parameters",
		Long:         "Load the configuration, compile every rule and print the parameters.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			return writeParams(cmd.OutOrStdout(), rootOpts.Format, cfg)
		},
	}
}

func paramViews(cfg config.Config) ([]ParamView, error) {
	views := make([]ParamView, 0, len(cfg.Parameters))
	for _, p := range cfg.Parameters {
		if _, err := rules.CompileAll(p.Rules); err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.ID, err)
		}

		def := p.Definition()
		r := def.Range
		views = append(views, ParamView{
			ID:      def.ID,
			Name:    def.Name,
			Start:   r.Start,
			End:     r.End,
			Default: textFor(def.Default, def.Decimals, def.Unit),
			Centre:  textFor(r.ToDomain(0.5), def.Decimals, def.Unit),
			Rules:   p.Rules,
		})
	}
	return views, nil
}

func textFor(v float64, decimals int, unit string) string {
	text := fmt.Sprintf("%.*f", decimals, v)
	if unit != "" {
		text += " " + unit
	}
	return text
}

func writeParams(w io.Writer, format string, cfg config.Config) error {
	views, err := paramViews(cfg)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRANGE\tDEFAULT\tCENTRE\tRULES")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t[%g, %g]\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Start, v.End, v.Default, v.Centre, strings.Join(v.Rules, "; "))
	}
	return tw.Flush()
}
