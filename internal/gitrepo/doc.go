// Package gitrepo answers the git questions the pull request workflow asks of a working tree:
// which branch is checked out and which one is the default, which files differ from the default
// branch, and where the configured remote points. RemoteURL turns that remote into an owner and
// repository pair.
package gitrepo
