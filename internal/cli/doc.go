// Package cli parses command-line arguments into an app.Config and maps
// misuse to ExitError codes. It also writes the starter job file for -init.
package cli
