// Package setup prepares a workstation for gmux: it writes the default pull request template and stores
// a validated GitHub token with the default organization in the configuration file.
package setup
