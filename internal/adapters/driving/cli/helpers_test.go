package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/galaxy-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/galaxy-cli/internal/core/domain"
	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driving"
	"github.com/custodia-labs/galaxy-cli/internal/core/services"
)

// fakeBuilder records the options it was called with.
type fakeBuilder struct {
	opts   domain.BuildOptions
	calls  int
	result *domain.BuildResult
	err    error
}

func (b *fakeBuilder) Build(_ context.Context, opts domain.BuildOptions) (*domain.BuildResult, error) {
	b.calls++
	b.opts = opts
	if b.err != nil {
		return nil, b.err
	}
	if b.result != nil {
		return b.result, nil
	}
	return &domain.BuildResult{OutputPath: opts.OutputPath}, nil
}

// testEnv holds the services installed for a command test.
type testEnv struct {
	settings   *services.SettingsService
	builder    *fakeBuilder
	pipeline   *domain.AppSettings
	pipeOpts   PipelineOptions
	cleanedUp  bool
	factoryErr error
}

// setupTestServices installs in-memory settings and a fake pipeline.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings: services.NewSettingsService(memory.NewConfigStore(), nil),
		builder:  &fakeBuilder{},
	}

	oldSettings, oldPipeline, oldBootstrap := settingsService, pipelineFactory, bootstrap
	settingsService = env.settings
	bootstrap = nil
	pipelineFactory = func(s *domain.AppSettings, opts PipelineOptions) (driving.GalaxyBuilder, func(), error) {
		if env.factoryErr != nil {
			return nil, nil, env.factoryErr
		}
		env.pipeline = s
		env.pipeOpts = opts
		return env.builder, func() { env.cleanedUp = true }, nil
	}

	t.Cleanup(func() {
		settingsService, pipelineFactory, bootstrap = oldSettings, oldPipeline, oldBootstrap
	})
	return env
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so Changed state does not
// leak between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
