// Package config resolves application settings from layered sources.
//
// A fixed schema of Setting values declares every configuration key along
// with its optional section, CLI flag name, environment variable override,
// default value and allowed-value set. The Resolver checks sources in strict
// precedence order:
//
//  1. CLI arguments (pflag)
//  2. The loaded configuration file (.conf/.ini, .yaml/.yml or .toml)
//  3. Environment variables
//  4. Caller-supplied defaults
//  5. The setting's own Default
//
// The first non-empty value wins; an empty string at any level counts as
// unset and lets a lower-precedence source win. Resolved values are recorded
// in the effective configuration, retrievable via Value and Values.
//
// Usage:
//
//	r := config.New(settings)
//	r.Bind(cmd.PersistentFlags())
//	if err := r.LoadFile(configPath); err != nil {
//	    return err
//	}
//	creds, err := r.ResolveGroup("splunkbase", []string{"username", "password"}, "SPLUNK_ASD")
package config
