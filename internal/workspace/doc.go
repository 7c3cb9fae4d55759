// Package workspace is the block editing model: blocks with their inputs,
// fields and connections, the workspace that owns them, and the undo history
// built from the events every mutation fires.
//
// Mutations fire events through the workspace's events.Session. An operation
// that fires several events opens a group when none is open, so it undoes as
// one step. Serialized trees are built by AppendBlock with events disabled
// and announced by a single create event.
//
// A Workspace is not safe for concurrent use.
package workspace
