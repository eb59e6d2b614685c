package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd builds the timeseqctl command tree. Flags are bound through
// viper so every setting can also come from a TIMESEQCTL_-prefixed
// environment variable or a config file passed via --config.
func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:           "timeseqctl",
		Short:         "Inspect and run TimeSeq sequencer scripts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initViper(cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.timeseqctl.yaml)")
	root.PersistentFlags().Int("sample-rate", 48000, "host sample rate in Hz")
	root.PersistentFlags().Bool("verbose", false, "log every engine notification and port write")
	_ = viper.BindPFlag("sample-rate", root.PersistentFlags().Lookup("sample-rate"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func initViper(cfgFile string) error {
	viper.SetEnvPrefix("timeseqctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".timeseqctl")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}
