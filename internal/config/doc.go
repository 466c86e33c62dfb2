// Package config defines the format-agnostic job model (tools, report jobs,
// grid jobs and their sinks) and the Loader and Converter interfaces that a
// concrete job file format implements.
//
// The HCL implementation lives in hcl_adapter; the app package only sees
// config types.
package config
