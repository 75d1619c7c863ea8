// Package organization lists and clones the GitHub repositories of a user or organization through the
// GitHub CLI.
package organization
