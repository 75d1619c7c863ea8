package discovery

import (
	"os"
	"path/filepath"
	"sort"
)

// DirectoryDiscoverer lists the immediate subdirectories of a root directory.
type DirectoryDiscoverer struct{}

// NewDirectoryDiscoverer constructs a discoverer backed by os.ReadDir.
func NewDirectoryDiscoverer() *DirectoryDiscoverer {
	return &DirectoryDiscoverer{}
}

// DiscoverDirectories returns absolute paths of the directories directly inside root, sorted by path.
// Symbolic links are followed; entries that cannot be inspected are skipped. Nested directories are
// never visited.
func (discoverer *DirectoryDiscoverer) DiscoverDirectories(root string) ([]string, error) {
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return nil, absoluteError
	}

	directoryEntries, readError := os.ReadDir(absoluteRoot)
	if readError != nil {
		return nil, readError
	}

	directories := make([]string, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(absoluteRoot, directoryEntry.Name())
		entryInfo, statError := os.Stat(entryPath)
		if statError != nil {
			continue
		}
		if !entryInfo.IsDir() {
			continue
		}
		directories = append(directories, entryPath)
	}

	sort.Strings(directories)
	return directories, nil
}
