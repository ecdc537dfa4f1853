package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mgpai22/srtbatch/internal/batch"
	"github.com/mgpai22/srtbatch/internal/config"
	"github.com/mgpai22/srtbatch/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file...]",
	Short: "Translate every subtitle file in the input directory",
	Long: `Translate subtitle files chunk by chunk and write one output file per
input, named <stem><suffix><ext> in the output directory.

With no arguments every file in the input directory whose extension is
listed in the config (default .srt) is translated, in name order. Passing
files translates just those.

With --watch the command keeps running after the existing files are done
and translates every new file dropped into the input directory until
interrupted.

A chunk that fails is replaced with "[Translation failed]" and the run
continues. The exit status is non-zero only when setup fails or the run
is interrupted.

Examples:
  srtbatch translate
  srtbatch translate --input-dir subs --output-dir out --target-language he
  srtbatch translate episode1.srt --provider anthropic --suffix _es -t spanish
  srtbatch translate --watch --config srtbatch.toml`,
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	addTranslateFlags(translateCmd)
}

func addTranslateFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("input-dir", "i", config.DefaultInputDir, "Directory scanned for subtitle files")
	cmd.Flags().
		StringP("output-dir", "o", config.DefaultOutputDir, "Directory for translated files")
	cmd.Flags().
		String("suffix", config.DefaultSuffix, "Suffix added to the output file stem")
	cmd.Flags().
		StringP("target-language", "t", config.DefaultTargetLanguage, "Target language, name or code (e.g. Hebrew, he, es)")
	cmd.Flags().
		String("provider", config.DefaultProvider, "Translation provider (bedrock, anthropic, openai, gemini)")
	cmd.Flags().
		String("model", "", "Model to use (provider-specific, uses sensible defaults)")
	cmd.Flags().
		String("region", config.DefaultRegion, "AWS region for Bedrock")
	cmd.Flags().
		StringP("api-key", "k", "", "API key (or set ANTHROPIC_API_KEY/OPENAI_API_KEY/GEMINI_API_KEY)")
	cmd.Flags().
		Int("max-chunk-tokens", config.DefaultChunkTokens, "Approximate token budget per chunk")
	cmd.Flags().
		Int("max-tokens", config.DefaultMaxTokens, "Maximum tokens in each model response")
	cmd.Flags().
		Float64("temperature", config.DefaultTemperature, "Sampling temperature")
	cmd.Flags().
		Int("timeout", config.DefaultTimeoutSeconds, "Request timeout in seconds")
	cmd.Flags().
		BoolP("watch", "w", false, "Keep translating files added to the input directory")
}

// overrides config values with the flags the user actually set
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("input-dir") {
		cfg.Paths.Input, _ = flags.GetString("input-dir")
	}
	if flags.Changed("output-dir") {
		cfg.Paths.Output, _ = flags.GetString("output-dir")
	}
	if flags.Changed("suffix") {
		cfg.Paths.Suffix, _ = flags.GetString("suffix")
	}
	if flags.Changed("target-language") {
		cfg.Translation.TargetLanguage, _ = flags.GetString("target-language")
	}
	if flags.Changed("provider") {
		cfg.Translation.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Translation.Model, _ = flags.GetString("model")
	}
	if flags.Changed("region") {
		cfg.Translation.Region, _ = flags.GetString("region")
	}
	if flags.Changed("max-chunk-tokens") {
		cfg.Chunking.MaxTokens, _ = flags.GetInt("max-chunk-tokens")
	}
	if flags.Changed("max-tokens") {
		cfg.Translation.MaxTokens, _ = flags.GetInt("max-tokens")
	}
	if flags.Changed("temperature") {
		t, _ := flags.GetFloat64("temperature")
		cfg.Translation.Temperature = &t
	}
	if flags.Changed("timeout") {
		cfg.Translation.TimeoutSeconds, _ = flags.GetInt("timeout")
	}

	return cfg.Validate()
}

func parseProvider(s string) (translate.Provider, error) {
	p := translate.Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case translate.ProviderBedrock,
		translate.ProviderAnthropic,
		translate.ProviderOpenAI,
		translate.ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf(
			"unsupported provider %q: use bedrock, anthropic, openai, or gemini",
			s,
		)
	}
}

// flag value first, then the provider's environment variable
func resolveAPIKey(provider translate.Provider, flagValue string) (string, error) {
	envVar := translate.APIKeyEnv(provider)
	if envVar == "" {
		return "", nil
	}
	if flagValue != "" {
		return flagValue, nil
	}
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	provider, err := parseProvider(cfg.Translation.Provider)
	if err != nil {
		return err
	}

	flagKey, _ := cmd.Flags().GetString("api-key")
	apiKey, err := resolveAPIKey(provider, flagKey)
	if err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if watch && len(args) > 0 {
		return fmt.Errorf("--watch cannot be combined with file arguments")
	}

	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("subtitle file not found: %s", path)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := cfg.Translation.Model
	if model == "" {
		model = translate.DefaultModel(provider)
	}

	logger.Infow("Starting subtitle translation",
		"provider", provider,
		"model", model,
		"target_language", translate.LanguageName(cfg.Translation.TargetLanguage),
		"input_dir", cfg.Paths.Input,
		"output_dir", cfg.Paths.Output,
		"chunk_tokens", cfg.Chunking.MaxTokens,
	)

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		TargetLanguage: cfg.Translation.TargetLanguage,
		Model:          model,
		Region:         cfg.Translation.Region,
		BaseURL:        cfg.Translation.BaseURL,
		MaxTokens:      cfg.Translation.MaxTokens,
		Temperature:    *cfg.Translation.Temperature,
		Timeout:        time.Duration(cfg.Translation.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}
	defer func() {
		if err := translator.Close(); err != nil {
			logger.Warnw("Failed to close translator", "error", err)
		}
	}()

	runner := batch.NewRunner(translator, logger, batch.Options{
		InputDir:       cfg.Paths.Input,
		OutputDir:      cfg.Paths.Output,
		Extensions:     cfg.Paths.Extensions,
		Suffix:         cfg.Paths.Suffix,
		MaxChunkTokens: cfg.Chunking.MaxTokens,
	})
	logger.Debugw("Runner ready", "run_id", runner.RunID(), "watch", watch)

	var report *batch.Report
	var runErr error
	if watch {
		report, runErr = runner.Watch(ctx)
		if errors.Is(runErr, context.Canceled) {
			runErr = nil
		}
	} else {
		report, runErr = runner.Run(ctx, args)
	}
	if report != nil && len(report.Files) > 0 {
		fmt.Println(renderReport(report))
	}
	if runErr != nil {
		return fmt.Errorf("translation stopped: %w", runErr)
	}

	fmt.Printf("Translated %d file(s)\n", len(report.Files)-report.FailedFiles())
	if n := report.FailedFiles(); n > 0 {
		fmt.Printf("  Failed files: %d\n", n)
	}
	if n := report.FailedChunks(); n > 0 {
		fmt.Printf("  Chunks replaced with placeholder: %d\n", n)
	}

	return nil
}

func renderReport(report *batch.Report) string {
	rows := make([][]string, 0, len(report.Files))
	for _, f := range report.Files {
		status := "ok"
		switch {
		case f.Err != nil:
			status = "error: " + f.Err.Error()
		case f.FailedChunks > 0:
			status = "partial"
		}
		rows = append(rows, []string{
			f.Input,
			f.Output,
			strconv.Itoa(f.Chunks),
			strconv.Itoa(f.FailedChunks),
			formatCues(f.SourceCues, f.OutputCues),
			status,
		})
	}
	return renderTable(
		[]string{"Input", "Output", "Chunks", "Failed", "Cues", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func formatCues(source, output int) string {
	if source < 0 || output < 0 {
		return "-"
	}
	return fmt.Sprintf("%d → %d", source, output)
}
