package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/releng/internal/config"
	"github.com/felixgeelhaar/releng/internal/version"
)

func newVersionCmd() *cobra.Command {
	var (
		versionVerbose bool
		versionJSON    bool
		configPath     string
	)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform. With --verbose or --json it also shows
the scripts directory, interpreter, digest backend and remap threshold that a
trace would use with the given configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			info := version.GetInfo()
			out := cmd.OutOrStdout()

			if !versionVerbose && !versionJSON {
				fmt.Fprintf(out, "releng %s\n", info.Short())
				return nil
			}

			cfg, err := config.Load(configPath, !cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			info = info.WithSetup(setupOf(cfg))

			if versionJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal version info: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintln(out, info.String())
			return nil
		},
	}

	versionCmd.Flags().BoolVar(&versionVerbose, "verbose", false, "show detailed version information")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")
	versionCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "configuration file")

	return versionCmd
}

func setupOf(cfg *config.Config) version.Setup {
	setup := version.Setup{
		ScriptsDir:    cfg.Scripts.Dir,
		Interpreter:   cfg.Scripts.Interpreter,
		DigestBackend: cfg.Digest.Backend,
	}
	if cfg.Remap.Enabled {
		setup.RemapThreshold = cfg.Remap.Threshold
	}
	return setup
}
