package cli

import (
	"github.com/mgpai22/srtbatch/internal/config"
	"github.com/mgpai22/srtbatch/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "srtbatch",
	Short: "Batch subtitle translator backed by hosted LLMs",
	Long: `srtbatch translates every subtitle file in a directory, one chunk at a
time, through a hosted language model (AWS Bedrock by default).

Timestamps and cue numbering are kept as-is; only the dialogue is
translated. Chunks that fail are replaced by a placeholder so one bad
request never loses the rest of the file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
}

// loads the --config file, or the built-in defaults when none is given
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}
