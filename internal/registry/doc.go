// Package registry is the glue between job files and the compiled sink
// modules.
//
// Each module registers its sinks by type name. A sink declares the Go
// struct its `sink "<type>"` block decodes into and the function that
// consumes a finished document. Before anything runs, ValidateModel checks
// that every sink a job file uses exists and that its arguments match the
// sink's input struct, so mistakes surface before any parse or tool run.
package registry
