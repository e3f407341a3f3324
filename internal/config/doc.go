// Package config defines the application configuration, its defaults and
// validation, along with the Loader interface for reading it from files.
//
// Loaders exist for HCL and TOML files. Values present in a file replace
// the defaults; command line flags are applied on top by the caller.
package config
