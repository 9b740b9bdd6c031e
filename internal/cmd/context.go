package cmd

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/releng/internal/config"
)

// CommandContext holds the flags of one invocation. It is built from the
// cobra command at run time so nothing is kept in package state.
type CommandContext struct {
	IIB     string
	Version string

	ConfigPath string
	// ConfigExplicit is set when --config was given, making a missing file an error
	ConfigExplicit bool

	Remap         bool
	ScriptsDir    string
	Interpreter   string
	DigestBackend string
	Insecure      bool
	Output        string
	LogLevel      string
	LogFormat     string

	cmd *cobra.Command
}

// NewCommandContext extracts command context from cobra.Command flags
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()
	c := &CommandContext{cmd: cmd}

	var err error
	if c.IIB, err = flags.GetString("iib"); err != nil {
		return nil, err
	}
	if c.Version, err = flags.GetString("version"); err != nil {
		return nil, err
	}
	if c.ConfigPath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	c.ConfigExplicit = flags.Changed("config")
	if c.Remap, err = flags.GetBool("remap"); err != nil {
		return nil, err
	}
	if c.ScriptsDir, err = flags.GetString("scripts-dir"); err != nil {
		return nil, err
	}
	if c.Interpreter, err = flags.GetString("interpreter"); err != nil {
		return nil, err
	}
	if c.DigestBackend, err = flags.GetString("digest-backend"); err != nil {
		return nil, err
	}
	if c.Insecure, err = flags.GetBool("insecure"); err != nil {
		return nil, err
	}
	if c.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if c.LogLevel, err = flags.GetString("log-level"); err != nil {
		return nil, err
	}
	if c.LogFormat, err = flags.GetString("log-format"); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadConfig reads the configuration file and applies the flags that were
// set explicitly on top of it.
func (c *CommandContext) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath, !c.ConfigExplicit)
	if err != nil {
		return nil, err
	}

	changed := c.cmd.Flags().Changed
	if changed("remap") {
		cfg.Remap.Enabled = c.Remap
	}
	if changed("scripts-dir") {
		cfg.Scripts.Dir = c.ScriptsDir
	}
	if changed("interpreter") {
		cfg.Scripts.Interpreter = c.Interpreter
	}
	if changed("digest-backend") {
		cfg.Digest.Backend = c.DigestBackend
	}
	if changed("insecure") {
		cfg.Digest.Insecure = c.Insecure
	}
	if changed("output") {
		cfg.Output.Format = c.Output
	}
	if changed("log-level") {
		cfg.Logging.Level = c.LogLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = c.LogFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
