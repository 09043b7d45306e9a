// Package cli wires the parley commands: the two service entrypoints plus
// the interactive chat client and the load benchmark.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/perodin/parley/internal/config"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Inference microservices for conversational AI and sentiment analysis",
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSentimentCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newBenchCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath == "" {
		configPath = config.DefaultPath()
	}

	return config.LoadOrCreate(configPath)
}
