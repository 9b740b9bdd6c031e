// Package remap redirects registry.redhat.io image references to the
// Konflux build namespace on quay.io for releases built there.
package remap

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/releng/internal/errors"
	"github.com/felixgeelhaar/releng/internal/log"
)

const (
	// DefaultThreshold is the first version whose images live on quay.io
	DefaultThreshold = "2.8.6"
	// DefaultTargetRegistry is the namespace remapped references point into
	DefaultTargetRegistry = "quay.io/redhat-user-workloads/rh-mtv-1-tenant/"
	// DevPreviewLabel replaces the version label for candidate images
	DevPreviewLabel = "dev-preview"

	candidateRepo  = "mtv-candidate"
	sourceRegistry = "redhat.io"
	targetHost     = "quay.io"
	repoPrefix     = "forklift-operator-"
)

var rhelSuffix = regexp.MustCompile(`-rhel\d+$`)

// Rule rewrites image references for versions at or above Threshold
type Rule struct {
	Threshold      string
	TargetRegistry string
	Compare        CompareMode
	Components     *ComponentTable
	Logger         *log.Logger
}

// NewRule creates a Rule with the default threshold, target and table
func NewRule() *Rule {
	return &Rule{
		Threshold:      DefaultThreshold,
		TargetRegistry: DefaultTargetRegistry,
		Compare:        CompareLexical,
		Components:     NewComponentTable(nil),
	}
}

// Remap returns the quay.io reference for a registry.redhat.io reference.
// References below the threshold, already on quay.io, on any other registry,
// or naming an unknown component are returned unchanged.
func (r *Rule) Remap(imageRef, version string) (string, error) {
	if r.Compare.below(version, r.threshold()) {
		return imageRef, nil
	}
	if strings.Contains(imageRef, targetHost) {
		return imageRef, nil
	}
	if !strings.Contains(imageRef, sourceRegistry) {
		return imageRef, nil
	}

	parts := strings.Split(imageRef, "/")
	if len(parts) < 3 {
		return "", errors.NewMalformedReferenceError(imageRef, "expected registry/repository/image")
	}
	repoPart, imagePart := parts[1], parts[2]

	label := Label(repoPart, version)

	componentTag, rest, hasDigest := strings.Cut(imagePart, "@")
	canonical, ok := r.lookup(componentTag)
	if !ok {
		log.OrDefault(r.Logger).Debug("no component mapping, keeping reference", "image", imageRef, "component", componentTag)
		return imageRef, nil
	}
	if !hasDigest {
		return "", errors.NewMalformedReferenceError(imageRef, "expected a digest after '@'")
	}
	digestPart, _, _ := strings.Cut(rest, "@")

	remapped := r.targetRegistry() + repoPrefix + label + "/" + canonical + "-" + label + "@" + digestPart

	log.OrDefault(r.Logger).Debug("remapped image reference", "from", imageRef, "to", remapped)
	return remapped, nil
}

// Label returns the tenant label for a version: "dev-preview" for candidate
// images, otherwise the version without its last two characters and with
// dots replaced by dashes ("2.8.5" -> "2-8").
func Label(repoPart, version string) string {
	if repoPart == candidateRepo {
		return DevPreviewLabel
	}
	trimmed := ""
	if len(version) > 2 {
		trimmed = version[:len(version)-2]
	}
	return strings.ReplaceAll(trimmed, ".", "-")
}

// lookup tries the image name as-is, then without a trailing -rhelN suffix
// (mtv-rhel9-operator-rhel9 resolves through mtv-rhel9-operator).
func (r *Rule) lookup(componentTag string) (string, bool) {
	table := r.Components
	if table == nil {
		table = NewComponentTable(nil)
	}
	if name, ok := table.Lookup(componentTag); ok {
		return name, true
	}
	if stripped := rhelSuffix.ReplaceAllString(componentTag, ""); stripped != componentTag {
		return table.Lookup(stripped)
	}
	return "", false
}

func (r *Rule) threshold() string {
	if r.Threshold != "" {
		return r.Threshold
	}
	return DefaultThreshold
}

func (r *Rule) targetRegistry() string {
	target := r.TargetRegistry
	if target == "" {
		target = DefaultTargetRegistry
	}
	if !strings.HasSuffix(target, "/") {
		target += "/"
	}
	return target
}
