// Package multiexec runs one shell or git command across every matching repository below the working
// directory and renders a block of output per repository followed by a summary.
package multiexec
