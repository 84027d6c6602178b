// Package config provides configuration loading and validation for the
// voice gender classifier. It handles YAML-based configuration with struct
// validation and ships defaults that make the CLI usable without a
// configuration file.
package config
