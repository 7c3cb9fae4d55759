// Package app contains the core application logic. It loads the block
// manifests, wires the registry, renderer, metrics and context menu, and
// runs the served workspace, decoupled from any specific entrypoint like a
// CLI.
package app
