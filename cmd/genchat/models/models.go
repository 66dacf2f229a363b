package modelscmder

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/pkg/provider"
)

const modelsLongDesc string = `List the configured providers and their models.

Providers whose API key is missing from the environment are shown as
unavailable along with the variable to set.

Examples:
  genchat models
  genchat models --config ./genchat.toml`

const modelsShortDesc string = "List providers and models"

type modelsCommander struct {
	configPath string
}

func NewModelsCmd() *cobra.Command {
	cmder := &modelsCommander{}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file (default: ~/.genchat/config.toml)")

	return cmd
}

func (c *modelsCommander) run(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	registry := provider.NewRegistry(cfg)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tSTATUS\tMODELS")

	for _, p := range registry.List() {
		status := "available"
		models := strings.Join(p.Models(), ", ")
		if !p.Available() {
			pc := cfg.Providers[p.ID()]
			status = fmt.Sprintf("missing %s", pc.KeyEnv)
			models = "-"
		}
		name := p.DisplayName()
		if p.ID() == cfg.Defaults.Provider {
			name += " (default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, models)
	}

	return w.Flush()
}
