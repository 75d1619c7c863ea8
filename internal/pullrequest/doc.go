// Package pullrequest drafts pull requests across repositories: it renders the pull request template
// against the files changed on the current branch, pushes unpublished branches after confirmation, and
// opens a prefilled GitHub compare page.
package pullrequest
