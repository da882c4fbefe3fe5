package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/queryms/msconsole/internal/config"
	"github.com/queryms/msconsole/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "msconsole",
	Short: "MS Console server",
	Long:  `MS Console is an agent server for exploring a multiple-sclerosis clinical research database over read-only SQL.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Desktop client ships credentials in a .env next to the binary.
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.msconsole/config.yaml)")
	rootCmd.PersistentFlags().String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("server.port", config.DefaultServerPort, "server port")
	rootCmd.PersistentFlags().String("openai.model", config.DefaultOpenAIModel, "default model")
}
