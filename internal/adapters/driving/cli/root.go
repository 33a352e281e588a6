// Package cli implements the galaxy command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
	"github.com/custodia-labs/galaxy-cli/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired by main once global flags are parsed.
var (
	settingsService driving.SettingsService
	pipelineFactory PipelineFactory
	bootstrap       Bootstrap
)

// PipelineOptions are run options that only affect adapter wiring.
type PipelineOptions struct {
	// SkipHidden excludes dot files and dot directories from discovery.
	SkipHidden bool
}

// PipelineFactory builds a GalaxyBuilder for the effective settings of one
// run. The returned cleanup releases the resources it opened.
type PipelineFactory func(settings *domain.AppSettings, opts PipelineOptions) (driving.GalaxyBuilder, func(), error)

// Services are the driving ports used by the commands.
type Services struct {
	Settings driving.SettingsService
	Pipeline PipelineFactory
}

// Bootstrap creates the services. configDir is the --config-dir flag and may
// be empty.
type Bootstrap func(configDir string) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "galaxy",
	Short: "Map blog posts onto a 2D topic galaxy",
	Long: `Galaxy reads Markdown blog posts, embeds their text, groups them into
topic clusters and lays them out in two dimensions. The result is a JSON
dataset for an interactive map of the blog.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug output to stderr")
	rootCmd.PersistentFlags().String("config-dir", "", "Configuration directory (default ~/.galaxy)")
}

// SetVersion sets the version reported by 'galaxy version'.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command. Errors are printed to stderr before they
// are returned, so callers only need to set the exit code.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var r *reportedError
		if !errors.As(err, &r) {
			rootCmd.PrintErrln("Error:", err)
		}
	}
	return err
}

// reportedError marks an error whose message has already been shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// reported prints a user-facing message to stderr and returns err marked as
// reported.
func reported(cmd *cobra.Command, err error, format string, args ...any) error {
	cmd.PrintErrf(format+"\n", args...)
	return &reportedError{err: err}
}

func setup(cmd *cobra.Command, _ []string) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("getting verbose flag: %w", err)
	}
	logger.SetVerbose(verbose)

	if bootstrap == nil {
		return nil
	}

	configDir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return fmt.Errorf("getting config-dir flag: %w", err)
	}
	services, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	settingsService = services.Settings
	pipelineFactory = services.Pipeline
	return nil
}

// applyEnvironment fills settings that may come from the environment.
func applyEnvironment(settings *domain.AppSettings) {
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

var errNoSettings = errors.New("settings service not configured")
