package main

import (
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/rephrase/cmd/rephrase/ask"
	servecmder "github.com/papercomputeco/rephrase/cmd/rephrase/serve"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const rephraseLongDesc string = `rephrase relays sentences to an LLM chat-completion provider
and returns many rewordings of each one.

Run the relay with "rephrase serve" and query it with "rephrase ask".`

func newRephraseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rephrase",
		Short:         "Paraphrase relay for LLM chat-completion providers",
		Long:          rephraseLongDesc,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())

	return cmd
}

func main() {
	if err := newRephraseCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
