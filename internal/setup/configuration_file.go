package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/gmux/internal/repos/shared"
)

const (
	githubSectionKeyConstant                    = "github"
	tokenKeyConstant                            = "token"
	defaultOwnerKeyConstant                     = "default_org"
	configurationPermissionsConstant            = 0o600
	configurationReadErrorTemplateConstant      = "unable to read configuration %s: %w"
	configurationParseErrorTemplateConstant     = "unable to parse configuration %s: %w"
	configurationEncodeErrorTemplateConstant    = "unable to encode configuration: %w"
	configurationWriteErrorTemplateConstant     = "unable to write configuration %s: %w"
	configurationDirectoryErrorTemplateConstant = "unable to create configuration directory %s: %w"
	githubSectionTypeErrorTemplateConstant      = "configuration %s: github section is not a mapping"
)

// GitHubSettings are the values setup persists.
type GitHubSettings struct {
	Token        string
	DefaultOwner string
}

// ConfigurationFileWriter merges GitHub settings into a YAML configuration file, keeping unrelated keys.
type ConfigurationFileWriter struct {
	fileSystem shared.FileSystem
}

// NewConfigurationFileWriter constructs a writer over fileSystem.
func NewConfigurationFileWriter(fileSystem shared.FileSystem) (*ConfigurationFileWriter, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &ConfigurationFileWriter{fileSystem: fileSystem}, nil
}

// Save writes settings under the github section of the file at path, creating the file and its
// directory when missing.
func (writer *ConfigurationFileWriter) Save(path string, settings GitHubSettings) error {
	document := map[string]any{}

	existingContent, readError := writer.fileSystem.ReadFile(path)
	switch {
	case readError == nil:
		if unmarshalError := yaml.Unmarshal(existingContent, &document); unmarshalError != nil {
			return fmt.Errorf(configurationParseErrorTemplateConstant, path, unmarshalError)
		}
		if document == nil {
			document = map[string]any{}
		}
	case !errors.Is(readError, fs.ErrNotExist):
		return fmt.Errorf(configurationReadErrorTemplateConstant, path, readError)
	}

	githubSection := map[string]any{}
	if existingSection, sectionExists := document[githubSectionKeyConstant]; sectionExists && existingSection != nil {
		typedSection, isMapping := existingSection.(map[string]any)
		if !isMapping {
			return fmt.Errorf(githubSectionTypeErrorTemplateConstant, path)
		}
		githubSection = typedSection
	}
	githubSection[tokenKeyConstant] = settings.Token
	githubSection[defaultOwnerKeyConstant] = settings.DefaultOwner
	document[githubSectionKeyConstant] = githubSection

	encodedContent, encodeError := yaml.Marshal(document)
	if encodeError != nil {
		return fmt.Errorf(configurationEncodeErrorTemplateConstant, encodeError)
	}

	directory := filepath.Dir(path)
	if mkdirError := writer.fileSystem.MkdirAll(directory, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(configurationDirectoryErrorTemplateConstant, directory, mkdirError)
	}
	if writeError := writer.fileSystem.WriteFile(path, encodedContent, configurationPermissionsConstant); writeError != nil {
		return fmt.Errorf(configurationWriteErrorTemplateConstant, path, writeError)
	}
	return nil
}
