package chatcmder

import (
	"github.com/spf13/cobra"

	"github.com/SAMRAT47/genchat/pkg/config"
	"github.com/SAMRAT47/genchat/tui"
)

const chatLongDesc string = `Chat with a model from the terminal.

Opens an interactive session against the default provider. Switch
provider and model, tune the temperature, export the transcript or
clear it, all without leaving the conversation.

Examples:
  genchat chat
  genchat chat --config ./genchat.toml`

const chatShortDesc string = "Start an interactive chat"

type chatCommander struct {
	configPath string
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to config file (default: ~/.genchat/config.toml)")

	return cmd
}

func (c *chatCommander) run() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	return tui.Run(cfg)
}
