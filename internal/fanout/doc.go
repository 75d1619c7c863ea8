// Package fanout runs one operation concurrently across the immediate subdirectories of a root
// directory, optionally restricted by a regular expression applied to each directory's base name.
package fanout
