// Package orchestrator chains the lookup stages: index → bundle →
// components → commits.
package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/releng/internal/kv"
	"github.com/felixgeelhaar/releng/internal/log"
	"github.com/felixgeelhaar/releng/internal/stage"
)

// StageResolver runs one lookup stage
type StageResolver interface {
	Resolve(ctx context.Context, inputs ...string) (*kv.Record, error)
}

// DigestResolver pins a tagged reference to its digest
type DigestResolver interface {
	Resolve(ctx context.Context, imageRef string) (string, error)
}

// Remapper rewrites a reference for a release version
type Remapper interface {
	Remap(imageRef, version string) (string, error)
}

// Orchestrator traces an index image down to component commits
type Orchestrator struct {
	IIB       StageResolver
	Bundle    StageResolver
	Component StageResolver
	Digest    DigestResolver
	Remap     Remapper
	// ApplyRemap enables registry remapping of the bundle and every component
	ApplyRemap bool
	Logger     *log.Logger
}

// Run resolves indexRef for version and returns each component's commit.
// Components are visited one at a time in the order the bundle lists them.
func (o *Orchestrator) Run(ctx context.Context, indexRef, version string) (*CommitMap, error) {
	runID := uuid.New().String()
	logger := log.OrDefault(o.Logger).With("run_id", runID)
	logger.InfoContext(ctx, "starting trace", "iib", indexRef, "version", version, "remap", o.ApplyRemap)

	iib, err := o.IIB.Resolve(ctx, indexRef, version)
	if err != nil {
		return nil, err
	}
	bundleRef := iib.Get(stage.KeyBundleImage)

	if bundleRef != "" {
		bundleRef, err = o.Digest.Resolve(ctx, bundleRef)
		if err != nil {
			return nil, err
		}
		if bundleRef, err = o.remap(bundleRef, version); err != nil {
			return nil, err
		}
	}
	logger.DebugContext(ctx, "bundle resolved", "bundle", bundleRef)

	components, err := o.Bundle.Resolve(ctx, bundleRef)
	if err != nil {
		return nil, err
	}

	commits := NewCommitMap()
	for _, name := range components.Keys() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref, err := o.remap(components.Get(name), version)
		if err != nil {
			return nil, err
		}

		result, err := o.Component.Resolve(ctx, ref)
		if err != nil {
			return nil, err
		}

		commit := result.Get(stage.KeyCommit)
		if commit == "" {
			logger.WarnContext(ctx, "no commit for component", "component", name, "image", ref)
		}
		commits.Add(name, commit)
	}

	logger.InfoContext(ctx, "trace finished", "components", commits.Len())
	return commits, nil
}

func (o *Orchestrator) remap(ref, version string) (string, error) {
	if !o.ApplyRemap || o.Remap == nil {
		return ref, nil
	}
	return o.Remap.Remap(ref, version)
}
