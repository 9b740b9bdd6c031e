package digest

import (
	"context"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/felixgeelhaar/releng/internal/exec"
	"github.com/felixgeelhaar/releng/internal/log"
)

// Source looks up the digest for a tag-qualified image reference.
// An empty string means the lookup produced nothing.
type Source interface {
	Digest(ctx context.Context, imageRef string) (string, error)
}

// ScriptSource runs the convert_to_sha script and takes its first result line
type ScriptSource struct {
	Runner exec.CommandRunner
	// Step describes the script; its Args are replaced by the image reference
	Step exec.Step
}

// Digest implements Source
func (s *ScriptSource) Digest(ctx context.Context, imageRef string) (string, error) {
	step := s.Step
	step.Args = []string{imageRef}

	out, err := s.Runner.Run(ctx, step.Command())
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", nil
	}
	return out[0], nil
}

// RegistryOptions configures registry lookups
type RegistryOptions struct {
	// Insecure allows plain HTTP registries
	Insecure bool
	// Keychain provides authentication credentials
	Keychain authn.Keychain
	// UserAgent for registry requests
	UserAgent string
}

// RegistrySource asks the registry for the manifest digest with a HEAD request
type RegistrySource struct {
	opts   RegistryOptions
	logger *log.Logger
}

// NewRegistrySource creates a RegistrySource with the default keychain
func NewRegistrySource(opts RegistryOptions, logger *log.Logger) *RegistrySource {
	if opts.Keychain == nil {
		opts.Keychain = authn.DefaultKeychain
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "releng/1.0"
	}
	return &RegistrySource{opts: opts, logger: logger}
}

// Digest implements Source. Registry failures are logged and reported as an
// empty result so that they end the run the same way an empty script does.
func (s *RegistrySource) Digest(ctx context.Context, imageRef string) (string, error) {
	logger := log.OrDefault(s.logger)

	var nameOpts []name.Option
	if s.opts.Insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	ref, err := name.ParseReference(imageRef, nameOpts...)
	if err != nil {
		logger.WithError(ClassifyRegistryError(err, imageRef)).Warn("cannot parse image reference", "image", imageRef)
		return "", nil
	}

	desc, err := remote.Head(ref,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(s.opts.Keychain),
		remote.WithUserAgent(s.opts.UserAgent),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.WithError(ClassifyRegistryError(err, imageRef)).Warn("registry digest lookup failed", "image", imageRef)
		return "", nil
	}

	return desc.Digest.String(), nil
}

var (
	_ Source = (*ScriptSource)(nil)
	_ Source = (*RegistrySource)(nil)
)
