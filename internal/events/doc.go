// Package events defines the workspace event model.
//
// An Event carries the fields every event shares (workspace, undo group,
// whether it is recorded for undo) and a Payload, a sealed tagged union of
// the concrete event bodies. Consumers switch on the payload's type.
//
// The package also holds the JSON wire format used for persistence and for
// synchronizing workspaces, the Session that tracks the open undo group and
// the disabled counter, and Filter, which coalesces a batch of events before
// it is replayed by undo or redo.
package events
