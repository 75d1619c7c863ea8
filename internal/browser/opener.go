// Package browser hands URLs to the operating system's default web browser.
package browser

import (
	"errors"
	"io"
	"strings"
	"sync"

	systembrowser "github.com/pkg/browser"
)

// ErrEmptyURL indicates Open received a blank URL.
var ErrEmptyURL = errors.New("browser url is empty")

// Opener opens a URL for the operator.
type Opener interface {
	Open(targetURL string) error
}

// SystemOpener launches the platform browser helper (xdg-open, open, rundll32).
type SystemOpener struct {
	outputOnce sync.Once
}

// NewSystemOpener constructs an opener whose helper output is discarded so it never mixes with command output.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{}
}

// Open runs the platform helper and waits for the helper itself to exit. Helpers such as xdg-open
// and open return once the browser has been asked to load the URL.
func (opener *SystemOpener) Open(targetURL string) error {
	trimmedURL := strings.TrimSpace(targetURL)
	if len(trimmedURL) == 0 {
		return ErrEmptyURL
	}
	opener.outputOnce.Do(func() {
		systembrowser.Stdout = io.Discard
		systembrowser.Stderr = io.Discard
	})
	return systembrowser.OpenURL(trimmedURL)
}
