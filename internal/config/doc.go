// SPDX-License-Identifier: MPL-2.0

// Package config loads corekit settings with Viper, using CUE as the file format.
//
// The file is looked up at the --config path, then in the platform config
// directory (config.cue under $XDG_CONFIG_HOME/corekit on Linux), then in the
// working directory. It is validated against the embedded #Config schema
// before being merged over the defaults. COREKIT_* environment variables
// override both; nested keys use underscores (COREKIT_CONSOLE_ADDRESS).
package config
