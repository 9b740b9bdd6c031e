// Package stage resolves one link of the index → bundle → component chain
// by running its lookup script and parsing the KEY: VALUE result.
package stage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/releng/internal/errors"
	"github.com/felixgeelhaar/releng/internal/exec"
	"github.com/felixgeelhaar/releng/internal/kv"
	"github.com/felixgeelhaar/releng/internal/log"
)

// Result keys printed by the lookup scripts
const (
	KeyBundleImage = "BUNDLE_IMAGE"
	KeyCommit      = "COMMIT"
)

// Script file names
const (
	ScriptIIB       = "iib.sh"
	ScriptBundle    = "bundle.sh"
	ScriptComponent = "component.sh"
	ScriptDigest    = "convert_to_sha.sh"
)

// Definition describes one stage
type Definition struct {
	// Name identifies the stage in logs and errors
	Name string
	// Inputs names each positional argument, used in MissingInput errors
	Inputs []string
	// EmptyMessage is printed when the script captures nothing
	EmptyMessage string
	// FatalOnEmpty ends the run when the script captures nothing
	FatalOnEmpty bool
}

// Resolver runs one stage script
type Resolver struct {
	Definition
	Runner  exec.CommandRunner
	Step    exec.Step
	Console io.Writer
	Logger  *log.Logger
}

// Options carries what every stage needs to build its command
type Options struct {
	Runner      exec.CommandRunner
	Interpreter string
	ScriptsDir  string
	Console     io.Writer
	Logger      *log.Logger
}

func newResolver(def Definition, script string, opts Options) *Resolver {
	return &Resolver{
		Definition: def,
		Runner:     opts.Runner,
		Step: exec.Step{
			Interpreter: opts.Interpreter,
			ScriptsDir:  opts.ScriptsDir,
			Script:      script,
		},
		Console: opts.Console,
		Logger:  opts.Logger,
	}
}

// NewIIB resolves an index image and version to its bundle image
func NewIIB(script string, opts Options) *Resolver {
	return newResolver(Definition{
		Name:         "iib",
		Inputs:       []string{"IIB URL", "Version"},
		EmptyMessage: "Was unable to find BUNDLE image in specified IIB",
		FatalOnEmpty: true,
	}, script, opts)
}

// NewBundle resolves a bundle image to its component images
func NewBundle(script string, opts Options) *Resolver {
	return newResolver(Definition{
		Name:         "bundle",
		Inputs:       []string{"BUNDLE URL"},
		EmptyMessage: "Was unable to find COMPONENT images in specified BUNDLE",
	}, script, opts)
}

// NewComponent resolves a component image to its build commit
func NewComponent(script string, opts Options) *Resolver {
	return newResolver(Definition{
		Name:         "component",
		Inputs:       []string{"COMPONENT URL"},
		EmptyMessage: "Was unable to find commit in specified COMPONENT",
	}, script, opts)
}

// Resolve validates inputs, runs the stage script and parses its result
func (r *Resolver) Resolve(ctx context.Context, inputs ...string) (*kv.Record, error) {
	logger := log.OrDefault(r.Logger).With("stage", r.Name)

	if len(inputs) != len(r.Inputs) {
		return nil, fmt.Errorf("%s stage expects %d inputs, got %d", r.Name, len(r.Inputs), len(inputs))
	}
	for i, input := range inputs {
		if input == "" {
			return nil, errors.NewMissingInputError(r.Inputs[i])
		}
	}

	step := r.Step
	step.Args = inputs

	out, err := r.Runner.Run(ctx, step.Command())
	if err != nil {
		return nil, err
	}

	if len(out) == 0 {
		fmt.Fprintln(r.console(), r.EmptyMessage)
		if r.FatalOnEmpty {
			return nil, errors.NewEmptyResultError(r.Name + " stage")
		}
		logger.WarnContext(ctx, "stage produced no result, continuing", "inputs", inputs)
	}

	record, err := kv.Parse(out)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "stage resolved", "keys", record.Keys())
	return record, nil
}

func (r *Resolver) console() io.Writer {
	if r.Console != nil {
		return r.Console
	}
	return os.Stdout
}
