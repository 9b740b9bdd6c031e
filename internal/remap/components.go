package remap

// DefaultComponents maps the image name used on registry.redhat.io to the
// component name used in the Konflux tenant on quay.io.
var DefaultComponents = map[string]string{
	"mtv-controller-rhel9":                     "forklift-controller",
	"mtv-must-gather-rhel8":                    "forklift-must-gather",
	"mtv-validation-rhel9":                     "validation",
	"mtv-api-rhel9":                            "forklift-api",
	"mtv-populator-controller-rhel9":           "populator-controller",
	"mtv-rhv-populator-rhel8":                  "ovirt-populator",
	"mtv-virt-v2v-rhel9":                       "virt-v2v",
	"mtv-openstack-populator-rhel9":            "openstack-populator",
	"mtv-console-plugin-rhel9":                 "forklift-console-plugin",
	"mtv-ova-provider-server-rhel9":            "ova-provider-server",
	"mtv-vsphere-xcopy-volume-populator-rhel9": "vsphere-xcopy-volume-populator",
	"mtv-rhel9-operator":                       "forklift-operator",
	"mtv-operator-bundle":                      "forklift-operator-bundle",
}

// ComponentTable resolves registry image names to canonical component names
type ComponentTable struct {
	entries map[string]string
}

// NewComponentTable builds a table from DefaultComponents plus extra entries.
// Extra entries win over defaults.
func NewComponentTable(extra map[string]string) *ComponentTable {
	entries := make(map[string]string, len(DefaultComponents)+len(extra))
	for k, v := range DefaultComponents {
		entries[k] = v
	}
	for k, v := range extra {
		entries[k] = v
	}
	return &ComponentTable{entries: entries}
}

// Lookup returns the canonical name for an image name
func (t *ComponentTable) Lookup(image string) (string, bool) {
	name, ok := t.entries[image]
	return name, ok && name != ""
}
