package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/releng/internal/config"
	"github.com/felixgeelhaar/releng/internal/digest"
	"github.com/felixgeelhaar/releng/internal/exec"
	"github.com/felixgeelhaar/releng/internal/log"
	"github.com/felixgeelhaar/releng/internal/orchestrator"
	"github.com/felixgeelhaar/releng/internal/remap"
	"github.com/felixgeelhaar/releng/internal/stage"
	"github.com/felixgeelhaar/releng/internal/ux"
	"github.com/felixgeelhaar/releng/internal/version"
)

// NewRootCmd creates the releng command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "releng",
		Short: "Trace an index image down to the commits of its components",
		Long: `releng resolves an index image (IIB) to its operator bundle, the bundle to
its component images, and every component image to the source commit it was
built from. Each lookup is done by a script in the scripts directory; their
output is shown as it arrives and the commits are reported at the end.

Examples:
  # Trace a release, remapping registry.redhat.io images to the build registry
  releng -i registry.example/iib:123456 -v 2.9.0

  # Plain variant without remapping
  releng -i registry.example/iib:123456 -v 2.8.5 --remap=false

  # Pin tags by asking the registry instead of running convert_to_sha.sh
  releng -i registry.example/iib:123456 -v 2.9.0 --digest-backend registry -o table
`,
		SilenceErrors: true,
		RunE:          runTrace,
	}

	flags := rootCmd.Flags()
	flags.StringP("iib", "i", "", "IIB (index image) URL")
	flags.StringP("version", "v", "", "release version, e.g. 2.9.0")
	flags.String("config", config.DefaultPath, "configuration file")
	flags.Bool("remap", true, "remap registry.redhat.io images to the build registry")
	flags.String("scripts-dir", "", "directory holding the lookup scripts (default \"scripts\")")
	flags.String("interpreter", "", "interpreter used to run the lookup scripts (default \"bash\")")
	flags.String("digest-backend", "", "how tags are pinned: script or registry (default \"script\")")
	flags.Bool("insecure", false, "allow plain HTTP registries for the registry digest backend")
	flags.StringP("output", "o", "", "report format: text, table, json or yaml (default \"text\")")
	flags.String("log-level", "", "log level: debug, info, warn or error (default \"warn\")")
	flags.String("log-format", "", "log format: text or json (default \"text\")")

	_ = rootCmd.MarkFlagRequired("iib")
	_ = rootCmd.MarkFlagRequired("version")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// ExecuteContext runs the root command with ctx, which is cancelled on interrupt
func ExecuteContext(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func runTrace(cmd *cobra.Command, args []string) error {
	// Flag errors have been reported with usage by now; failures from here on are not usage errors
	cmd.SilenceUsage = true

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	cfg, err := cmdCtx.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	log.SetDefaultLogger(logger)

	out := cmd.OutOrStdout()

	formatter, err := ux.NewFormatter(cfg.Output.Format, &ux.FormatterOptions{Writer: out})
	if err != nil {
		return err
	}

	o, err := newOrchestrator(cfg, out, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}

	commits, err := o.Run(cmd.Context(), cmdCtx.IIB, cmdCtx.Version)
	if err != nil {
		// main prints the error itself; the structured record is for debugging
		if logger.Enabled(cmd.Context(), log.LevelDebug) {
			logger.LogError(err)
		}
		return ux.EnhanceError(err)
	}

	return formatter.Format(commits)
}

func newLogger(cfg *config.Config, stderr io.Writer) (*log.Logger, error) {
	lc, err := cfg.LogConfig()
	if err != nil {
		return nil, err
	}
	lc.Output = log.NewOutput(stderr)
	return log.New(lc), nil
}

// newOrchestrator wires the runner, stages, digest backend and remap rule
// described by cfg. Script output and console diagnostics go to out.
func newOrchestrator(cfg *config.Config, out, stderr io.Writer, logger *log.Logger) (*orchestrator.Orchestrator, error) {
	runner := exec.NewRunner(logger)
	runner.Echo = out
	runner.Stderr = stderr

	opts := stage.Options{
		Runner:      runner,
		Interpreter: cfg.Scripts.Interpreter,
		ScriptsDir:  cfg.Scripts.Dir,
		Console:     out,
		Logger:      logger,
	}

	var source digest.Source
	switch cfg.Digest.Backend {
	case config.BackendRegistry:
		source = digest.NewRegistrySource(digest.RegistryOptions{
			Insecure:  cfg.Digest.Insecure,
			UserAgent: "releng/" + version.Version,
		}, logger)
	default:
		source = &digest.ScriptSource{
			Runner: runner,
			Step: exec.Step{
				Interpreter: cfg.Scripts.Interpreter,
				ScriptsDir:  cfg.Scripts.Dir,
				Script:      cfg.Scripts.Digest,
			},
		}
	}
	resolver := digest.NewResolver(source, logger)
	resolver.Console = out

	rule, err := newRemapRule(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &orchestrator.Orchestrator{
		IIB:        stage.NewIIB(cfg.Scripts.IIB, opts),
		Bundle:     stage.NewBundle(cfg.Scripts.Bundle, opts),
		Component:  stage.NewComponent(cfg.Scripts.Component, opts),
		Digest:     resolver,
		Remap:      rule,
		ApplyRemap: cfg.Remap.Enabled,
		Logger:     logger,
	}, nil
}

func newRemapRule(cfg *config.Config, logger *log.Logger) (*remap.Rule, error) {
	mode, err := remap.ParseCompareMode(cfg.Remap.Compare)
	if err != nil {
		return nil, err
	}

	rule := remap.NewRule()
	rule.Compare = mode
	rule.Components = remap.NewComponentTable(cfg.Remap.Components)
	rule.Logger = logger
	if cfg.Remap.Threshold != "" {
		rule.Threshold = cfg.Remap.Threshold
	}
	if cfg.Remap.TargetRegistry != "" {
		rule.TargetRegistry = cfg.Remap.TargetRegistry
	}
	return rule, nil
}
