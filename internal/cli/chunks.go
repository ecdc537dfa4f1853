package cli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/srtbatch/internal/chunker"
	"github.com/mgpai22/srtbatch/internal/subtitle"
	"github.com/spf13/cobra"
)

const previewWidth = 48

var chunksCmd = &cobra.Command{
	Use:   "chunks [subtitle_file]",
	Short: "Show how a file would be split into chunks",
	Long: `Split a subtitle file with the configured token budget and print one
row per chunk. No translation request is made.

Examples:
  srtbatch chunks "Input Subtitles/movie.srt"
  srtbatch chunks movie.srt --max-chunk-tokens 500`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	rootCmd.AddCommand(chunksCmd)

	chunksCmd.Flags().
		Int("max-chunk-tokens", 0, "Approximate token budget per chunk (default from config)")
}

func runChunks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	budget := cfg.Chunking.MaxTokens
	if cmd.Flags().Changed("max-chunk-tokens") {
		budget, _ = cmd.Flags().GetInt("max-chunk-tokens")
	}

	file, err := subtitle.Open(args[0])
	if err != nil {
		return err
	}

	chunks := chunker.Split(file.Content, budget)
	logger.Debugw("Split file", "file", file.Path, "chunks", len(chunks), "budget", budget)

	if len(chunks) == 0 {
		fmt.Println("File is empty, no chunks")
		return nil
	}

	fmt.Println(renderChunks(chunks))
	fmt.Printf("%d chunk(s), budget %d tokens\n", len(chunks), budget)
	return nil
}

func renderChunks(chunks []chunker.Chunk) string {
	rows := make([][]string, 0, len(chunks))
	for _, c := range chunks {
		rows = append(rows, []string{
			strconv.Itoa(c.Index + 1),
			strconv.Itoa(len(c.Lines)),
			strconv.Itoa(c.Tokens),
			preview(c.Lines[0]),
		})
	}
	return renderTable(
		[]string{"Chunk", "Lines", "Tokens", "First line"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft},
	)
}

func preview(line string) string {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= previewWidth {
		return line
	}
	runes := []rune(line)
	return string(runes[:previewWidth-3]) + "..."
}
