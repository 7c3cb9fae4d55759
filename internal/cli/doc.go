// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. Each
// cobra command translates its flags into an app.Config and drives the app.
package cli
