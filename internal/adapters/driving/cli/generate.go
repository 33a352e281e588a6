package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/galaxy-cli/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the galaxy dataset",
	Long: `Read every Markdown post under the input directory, embed it, group the
posts into topic clusters and project them onto a 2D plane.

Drafts (draft: true in front matter) are skipped. The dataset is written
atomically, so a failed run leaves any previous file untouched.`,
	Example: `  galaxy generate
  galaxy generate --input-dir content/posts --output public/galaxy.json
  galaxy generate --provider tfidf --clusters 8 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("input-dir", "", "Directory of .md and .mdx posts")
	f.StringP("output", "o", "", "Output JSON file")
	f.IntP("clusters", "k", domain.DefaultClusters, "Number of topic clusters")
	f.Int("batch-size", domain.DefaultBatchSize, "Texts per embedding request")
	f.Uint64("seed", domain.DefaultSeed, "Random seed for clustering and projection")
	f.String("provider", "", "Embedding provider (ollama, openai, tfidf)")
	f.String("model", "", "Embedding model")
	f.String("base-url", "", "Embedding API base URL")
	f.Bool("no-cache", false, "Disable the embedding cache")
	f.Bool("skip-hidden", false, "Ignore hidden files and directories")
	f.String("clusterer", "", "Clustering algorithm")
	f.String("projector", "", "2D projection algorithm (tsne, pca)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	if pipelineFactory == nil {
		return errors.New("pipeline not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applyGenerateFlags(cmd, settings); err != nil {
		return err
	}
	applyEnvironment(settings)

	skipHidden, err := cmd.Flags().GetBool("skip-hidden")
	if err != nil {
		return fmt.Errorf("getting skip-hidden flag: %w", err)
	}

	builder, cleanup, err := pipelineFactory(settings, PipelineOptions{SkipHidden: skipHidden})
	if err != nil {
		return err
	}
	defer cleanup()

	opts := domain.BuildOptions{
		InputDir:   settings.Paths.InputDir,
		OutputPath: settings.Paths.Output,
		Clusters:   settings.Layout.Clusters,
		BatchSize:  settings.Layout.BatchSize,
		Seed:       settings.Layout.Seed,
	}
	if bar := newProgressBar(cmd.ErrOrStderr()); bar != nil {
		opts.Progress = bar.update
	}

	result, err := builder.Build(cmd.Context(), opts)
	if err != nil {
		if errors.Is(err, domain.ErrSourceNotFound) {
			return reported(cmd, err, "Input directory not found: %s", opts.InputDir)
		}
		return err
	}

	if result.Posts == 0 {
		cmd.Println("No posts found. Wrote empty clusters.json.")
		return nil
	}
	cmd.Printf("Wrote %d posts to %s\n", result.Posts, result.OutputPath)
	printSummary(cmd.ErrOrStderr(), result)
	return nil
}

// applyGenerateFlags overrides settings with the flags given on the command
// line. Unset flags keep the configured values.
func applyGenerateFlags(cmd *cobra.Command, settings *domain.AppSettings) error {
	f := cmd.Flags()
	var err error

	if f.Changed("input-dir") {
		settings.Paths.InputDir, err = f.GetString("input-dir")
		if err != nil {
			return err
		}
	}
	if f.Changed("output") {
		settings.Paths.Output, err = f.GetString("output")
		if err != nil {
			return err
		}
	}
	if f.Changed("clusters") {
		settings.Layout.Clusters, err = f.GetInt("clusters")
		if err != nil {
			return err
		}
	}
	if f.Changed("batch-size") {
		settings.Layout.BatchSize, err = f.GetInt("batch-size")
		if err != nil {
			return err
		}
	}
	if f.Changed("seed") {
		settings.Layout.Seed, err = f.GetUint64("seed")
		if err != nil {
			return err
		}
	}
	if f.Changed("clusterer") {
		settings.Layout.Clusterer, err = f.GetString("clusterer")
		if err != nil {
			return err
		}
	}
	if f.Changed("projector") {
		settings.Layout.Projector, err = f.GetString("projector")
		if err != nil {
			return err
		}
	}
	if f.Changed("provider") {
		name, err := f.GetString("provider")
		if err != nil {
			return err
		}
		provider := domain.AIProvider(name)
		if !provider.IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, name)
		}
		if provider != settings.Embedding.Provider {
			settings.Embedding.Provider = provider
			settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
			settings.Embedding.BaseURL = ""
			if provider == domain.AIProviderOllama {
				settings.Embedding.BaseURL = domain.DefaultAppSettings().Embedding.BaseURL
			}
		}
	}
	if f.Changed("model") {
		settings.Embedding.Model, err = f.GetString("model")
		if err != nil {
			return err
		}
	}
	if f.Changed("base-url") {
		settings.Embedding.BaseURL, err = f.GetString("base-url")
		if err != nil {
			return err
		}
	}
	if f.Changed("no-cache") {
		noCache, err := f.GetBool("no-cache")
		if err != nil {
			return err
		}
		settings.Embedding.Cache = settings.Embedding.Cache && !noCache
	}

	if settings.Layout.Clusters <= 0 {
		return fmt.Errorf("%w: clusters must be positive", domain.ErrInvalidInput)
	}
	if settings.Layout.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// progressBar renders embedding progress on a terminal.
type progressBar struct {
	w   io.Writer
	bar progress.Model
}

// newProgressBar returns nil when w is not a terminal.
func newProgressBar(w io.Writer) *progressBar {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return &progressBar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) update(done, total int) {
	if total <= 0 {
		return
	}
	fmt.Fprintf(p.w, "\rEmbedding %s %d/%d", p.bar.ViewAs(float64(done)/float64(total)), done, total)
	if done >= total {
		fmt.Fprintln(p.w)
	}
}

func printSummary(w io.Writer, result *domain.BuildResult) {
	s := styles.DefaultStyles()
	fmt.Fprintln(w, s.Title.Render("Galaxy generated"))
	fmt.Fprintln(w, s.KeyValue("Posts", fmt.Sprint(result.Posts)))
	if result.Drafts > 0 {
		fmt.Fprintln(w, s.KeyValue("Drafts", s.Muted.Render(fmt.Sprintf("%d skipped", result.Drafts))))
	}
	fmt.Fprintln(w, s.KeyValue("Clusters", fmt.Sprint(result.Clusters)))
	fmt.Fprintln(w, s.KeyValue("Output", result.OutputPath))
	fmt.Fprintln(w, s.KeyValue("Duration", result.Duration.Round(time.Millisecond).String()))
	fmt.Fprintln(w, s.KeyValue("Run", s.Muted.Render(result.RunID)))
}
