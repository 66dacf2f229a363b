package main

import (
	"os"

	"github.com/spf13/cobra"

	chatcmder "github.com/SAMRAT47/genchat/cmd/genchat/chat"
	exportcmder "github.com/SAMRAT47/genchat/cmd/genchat/exportcmd"
	modelscmder "github.com/SAMRAT47/genchat/cmd/genchat/models"
	servecmder "github.com/SAMRAT47/genchat/cmd/genchat/serve"
)

const rootLongDesc string = `genchat is a multi-provider LLM chat client.

It speaks to OpenAI, Google Gemini, Groq and local Ollama models behind
one interface. API keys come from the environment (or a .env file);
providers without a key simply show up as unavailable.`

func main() {
	root := &cobra.Command{
		Use:           "genchat",
		Short:         "Multi-provider LLM chat",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		chatcmder.NewChatCmd(),
		servecmder.NewServeCmd(),
		modelscmder.NewModelsCmd(),
		exportcmder.NewExportCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
