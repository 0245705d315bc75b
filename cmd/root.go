package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harmonia-mir/harmonia/conf"
	"github.com/harmonia-mir/harmonia/logging"
)

var (
	cfgFile  string
	verbose  bool
	settings *conf.Settings
)

var rootCmd = &cobra.Command{
	Use:   "harmonia",
	Short: "Harmonic analysis for multi-instrument scores",
	Long: `Harmonia analyzes multi-instrument symbolic scores (ToneLib-style XML,
Standard MIDI Files) and emits a cross-validated harmonic description:
modal center, chord progression, and precision-gated temporal segments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version must work even without a readable config
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		var err error
		settings, err = conf.Load(cfgFile)
		if err != nil {
			return err
		}

		logging.SetLevel(logging.ParseLevel(settings.Log.Level))
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		}
		return nil
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
