// Package config defines the canonical project model and the loader that
// produces it from a YAML project file.
//
// Loading runs the passes of the config pipeline in a fixed order: the
// expander rewrites authoring sugar section by section, the desugarer
// resolves shorthand keys introduced or left behind by expansion, and the
// auto-capturer adds discovered workspaces. The resulting Project is
// canonical and is only read afterwards, so it can be shared by concurrent
// resolutions.
package config
