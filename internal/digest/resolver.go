// Package digest pins tag-qualified image references to their sha256 digest.
package digest

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/releng/internal/errors"
	"github.com/felixgeelhaar/releng/internal/log"
)

// Marker identifies a digest-pinned reference
const Marker = "@sha256:"

// Resolver rewrites image references to their digest-pinned form
type Resolver struct {
	Source  Source
	Console io.Writer
	Logger  *log.Logger
}

// NewResolver creates a Resolver printing to stdout
func NewResolver(source Source, logger *log.Logger) *Resolver {
	return &Resolver{Source: source, Console: os.Stdout, Logger: logger}
}

// Resolve returns imageRef unchanged when it is already pinned. Otherwise it
// looks up the digest and returns BasePart(imageRef) + "@" + digest. An empty
// lookup is reported on the console and returned as a fatal EmptyResult.
func (r *Resolver) Resolve(ctx context.Context, imageRef string) (string, error) {
	if strings.Contains(imageRef, Marker) {
		return imageRef, nil
	}

	console := r.console()
	fmt.Fprintln(console, "Converting tag to sha...")

	sha, err := r.Source.Digest(ctx, imageRef)
	if err != nil {
		return "", err
	}
	if sha == "" {
		fmt.Fprintf(console, "Could not get sha of from: %s\n", imageRef)
		return "", errors.NewEmptyResultError("digest resolution")
	}

	pinned := BasePart(imageRef) + "@" + sha
	log.OrDefault(r.Logger).DebugContext(ctx, "pinned image reference", "from", imageRef, "to", pinned)
	return pinned, nil
}

// BasePart returns imageRef up to, not including, its first ':'.
// A registry host with a port is cut at the port; lookup scripts and the
// release registries never use one.
func BasePart(imageRef string) string {
	base, _, _ := strings.Cut(imageRef, ":")
	return base
}

func (r *Resolver) console() io.Writer {
	if r.Console != nil {
		return r.Console
	}
	return os.Stdout
}
