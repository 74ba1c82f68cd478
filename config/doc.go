// Package config handles loading and parsing of configuration from YAML
// files and environment variables. It defines the monitor configuration
// structure including the backend list, virtual service address, port
// specifications, loss thresholds and probe timing.
package config
