// Package relay keeps workspaces in sync by replaying events.
//
// Every event crosses the boundary in its JSON wire form, whether the other
// side is a workspace in the same process (Mirror, Link) or a peer reached
// through a Transport (Client). UI events never cross. Events applied on the
// receiving side are tagged so the relay does not send them back.
package relay
