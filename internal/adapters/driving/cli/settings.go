package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/galaxy-cli/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, layout parameters and paths.

Settings are stored in config.toml in the configuration directory.
Flags given to 'galaxy generate' override them for a single run.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  galaxy settings set layout.clusters 8
  galaxy settings set embedding.provider tfidf

Run 'galaxy settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Interactively choose the embedding provider, model and API key, then check the provider responds.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	s := styles.DefaultStyles()
	cmd.Println(s.Title.Render("Current Settings"))
	cmd.Println()

	cmd.Println(s.Section.Render("[Embedding]"))
	cmd.Println(s.KeyValue("  Provider", settings.Embedding.Provider.Description()))
	cmd.Println(s.KeyValue("  Model", settings.Embedding.Model))
	if settings.Embedding.BaseURL != "" {
		cmd.Println(s.KeyValue("  Base URL", settings.Embedding.BaseURL))
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		key := "(not set)"
		if settings.Embedding.APIKey != "" {
			key = maskAPIKey(settings.Embedding.APIKey)
		}
		cmd.Println(s.KeyValue("  API Key", key))
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Println(s.KeyValue("  Dimensions", strconv.Itoa(settings.Embedding.Dimensions)))
	}
	if settings.Embedding.RateLimit > 0 {
		cmd.Println(s.KeyValue("  Rate limit", fmt.Sprintf("%g batches/s", settings.Embedding.RateLimit)))
	}
	cmd.Println(s.KeyValue("  Cache", yesNo(settings.Embedding.Cache && settings.Embedding.Provider.Cacheable())))
	if settings.Embedding.IsConfigured() {
		cmd.Println(s.KeyValue("  Status", s.Success.Render("configured")))
	} else {
		cmd.Println(s.KeyValue("  Status", s.Warning.Render("not configured")))
	}
	cmd.Println()

	cmd.Println(s.Section.Render("[Layout]"))
	cmd.Println(s.KeyValue("  Clusters", strconv.Itoa(settings.Layout.Clusters)))
	cmd.Println(s.KeyValue("  Batch size", strconv.Itoa(settings.Layout.BatchSize)))
	cmd.Println(s.KeyValue("  Seed", strconv.FormatUint(settings.Layout.Seed, 10)))
	cmd.Println(s.KeyValue("  Clusterer", settings.Layout.Clusterer))
	cmd.Println(s.KeyValue("  Projector", settings.Layout.Projector))
	cmd.Println()

	cmd.Println(s.Section.Render("[Paths]"))
	cmd.Println(s.KeyValue("  Input", settings.Paths.InputDir))
	cmd.Println(s.KeyValue("  Output", settings.Paths.Output))
	if settings.Paths.DataDir != "" {
		cmd.Println(s.KeyValue("  Data", settings.Paths.DataDir))
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if key == "embedding.api_key" {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNoSettings
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	model := defaultModel
	if selectedProvider != domain.AIProviderTFIDF {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		if m := readLine(reader); m != "" {
			model = m
		}
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal and falls back to
// the buffered reader otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
