package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/temirov/gmux/internal/pullrequest"
	"github.com/temirov/gmux/internal/repos/shared"
	"github.com/temirov/gmux/internal/utils"
)

const (
	directoryPermissionsConstant           = 0o755
	templatePermissionsConstant            = 0o644
	templateDirectoryErrorTemplateConstant = "unable to create template directory %s: %w"
	templateInspectErrorTemplateConstant   = "unable to inspect template %s: %w"
	templateWriteErrorTemplateConstant     = "unable to write template %s: %w"
	fileSystemMissingMessageConstant       = "template initializer requires a filesystem"
)

// ErrFileSystemNotConfigured indicates a component was constructed without a filesystem.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// TemplateInitializer writes the default pull request template.
type TemplateInitializer struct {
	fileSystem shared.FileSystem
}

// NewTemplateInitializer constructs an initializer over fileSystem.
func NewTemplateInitializer(fileSystem shared.FileSystem) (*TemplateInitializer, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &TemplateInitializer{fileSystem: fileSystem}, nil
}

// Initialize creates directory when needed and writes the default template into it unless a template is
// already present. It returns the template path and whether the file was created.
func (initializer *TemplateInitializer) Initialize(directory string) (string, bool, error) {
	templatePath := filepath.Join(directory, utils.PullRequestTemplateFileName)
	if mkdirError := initializer.fileSystem.MkdirAll(directory, directoryPermissionsConstant); mkdirError != nil {
		return templatePath, false, fmt.Errorf(templateDirectoryErrorTemplateConstant, directory, mkdirError)
	}

	_, statError := initializer.fileSystem.Stat(templatePath)
	switch {
	case statError == nil:
		return templatePath, false, nil
	case !errors.Is(statError, fs.ErrNotExist):
		return templatePath, false, fmt.Errorf(templateInspectErrorTemplateConstant, templatePath, statError)
	}

	if writeError := initializer.fileSystem.WriteFile(templatePath, []byte(pullrequest.DefaultTemplate), templatePermissionsConstant); writeError != nil {
		return templatePath, false, fmt.Errorf(templateWriteErrorTemplateConstant, templatePath, writeError)
	}
	return templatePath, true, nil
}
