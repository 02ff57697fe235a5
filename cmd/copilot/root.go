package main

import (
	"fmt"
	"log"

	"job-copilot/internal/adapter/client"
	"job-copilot/internal/config"
	"job-copilot/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var (
	v = viper.New()

	rootCmd = &cobra.Command{
		Use:           "copilot",
		Short:         "copilot is a terminal client for the job-copilot server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv()
		},
	}
)

func init() {
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("server", "http://localhost:3000")
	v.SetDefault("user", "")

	rootCmd.PersistentFlags().String("server", "http://localhost:3000", "copilot server base URL")
	rootCmd.PersistentFlags().StringP("user", "u", "", "user id (default demo-user)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")

	for _, key := range []string{"server", "user", "debug"} {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			log.Fatalf("binding flag %s: %v", key, err)
		}
	}

	rootCmd.AddCommand(uploadCmd, chatCmd, applyCmd)
}

func newClient() *client.Client {
	return client.New(v.GetString("server"))
}

func newLogger() *zap.Logger {
	l, err := logger.New(false, v.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
