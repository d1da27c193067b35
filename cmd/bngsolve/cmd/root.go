package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "bngsolve",
	Short: "bngsolve runs the BNG allocation engine against a fixture",
	Long: `bngsolve is a demonstration harness for the Biodiversity Net Gain
allocation optimiser: given a JSON fixture describing a development site's
demand, a catalogue of habitat banks, and a solve context, it computes the
cheapest legally admissible assignment of supply to demand and prints the
resulting allocation.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bngsolve.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "emit debug-level solver diagnostics")
	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for verbose failed")
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bngsolve")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("config_file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// solverLogger returns a console logger at debug level when --verbose is
// set, otherwise a no-op logger — matching the engine's "silent unless a
// caller opts in" default.
func solverLogger() zerolog.Logger {
	if !viper.GetBool("verbose") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
