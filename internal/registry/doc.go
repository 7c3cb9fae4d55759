// Package registry provides the central "glue" for the block type system.
//
// The Registry stores mappings between the string identifiers used in
// manifests (e.g. behavior = "controls_if") and the compiled Go behaviours
// and field validators that implement them. It also holds the parsed,
// format-agnostic block definitions from the manifests themselves.
//
// During application startup, the registry is populated and then validated to
// ensure that the Go code and the manifests are in sync. After that it serves
// as the workspace.TypeRegistry every workspace builds its blocks from.
package registry
