// Package utils holds the ambient plumbing shared by gmux commands: layered viper configuration, the
// zap logger factory, configuration directory resolution, a serializing output writer, and command
// context values.
package utils
