// Package app wires the job model to the parsers and sinks. An App runs
// tool blocks in order, then parses report jobs and loads grid jobs with a
// bounded number of workers, and hands every result to the sinks named in
// its job block.
package app
