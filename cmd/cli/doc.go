// Package cli assembles the gmux command hierarchy: the root command with its persistent configuration
// and logging flags, and the init, setup, cmd, git, pr, status, clone, and list subcommands.
package cli
