// Package cli wires the widget core into an interactive terminal client,
// mainly for exercising an assistant endpoint without a browser embed.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tablevoice/widget/internal/config"
)

// Dependencies carries everything the commands need.
type Dependencies struct {
	Config *config.Config
}

// NewRootCmd builds the widget command tree.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "widget",
		Short: "Conversational reservation widget client",
		Long:  "Terminal client for the reservation widget core: chat with a remote assistant, tap quick actions by number, and record simulated voice clips.",
	}

	rootCmd.AddCommand(NewChatCmd(deps))

	return rootCmd
}
