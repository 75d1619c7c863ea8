// Package githubcli wraps the GitHub CLI for gmux workflows.
//
// It validates credentials, lists the repositories of a user or organization
// through paginated gh api calls, and clones repositories with git. Every call
// goes through execshell so interactions with GitHub can be stubbed in tests.
package githubcli
