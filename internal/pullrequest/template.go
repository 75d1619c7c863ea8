package pullrequest

import (
	"regexp"
	"strings"
)

// DefaultTemplate is written by the init command and used when no template file is configured.
const DefaultTemplate = "# {{ title }}\n\n## Changes\n{% for file in diff_files %}\n- {{ file }}\n{% endfor %}\n\n## Repository\n{{ repository_name }}\n"

const (
	titleMarkerNameConstant          = "title"
	repositoryNameMarkerNameConstant = "repository_name"
	renderedLineSeparatorConstant    = "\n"
)

var (
	templateMarkerExpression = regexp.MustCompile(`(?s)\{\{\s*(title|repository_name)\s*\}\}|\{%\s*for\s+file\s+in\s+diff_files\s*%\}(\r?\n)?(.*?)\r?\n?\{%\s*endfor\s*%\}`)
	fileMarkerExpression     = regexp.MustCompile(`\{\{\s*file\s*\}\}`)
)

// DraftContext carries the values substituted into a pull request template for one repository.
type DraftContext struct {
	Title          string
	Template       string
	RepositoryName string
	DiffFiles      []string
}

// Render substitutes the title, repository name and diff file loop in a single pass. The loop body is
// repeated once per file and the copies are joined with the line ending that follows the loop opener,
// or with a newline for inline loops. Markers outside that set are left
// verbatim, and substituted values are never scanned for markers.
func Render(draftContext DraftContext) string {
	return templateMarkerExpression.ReplaceAllStringFunc(draftContext.Template, func(marker string) string {
		submatches := templateMarkerExpression.FindStringSubmatch(marker)
		switch submatches[1] {
		case titleMarkerNameConstant:
			return draftContext.Title
		case repositoryNameMarkerNameConstant:
			return draftContext.RepositoryName
		}
		lineSeparator := submatches[2]
		if len(lineSeparator) == 0 {
			lineSeparator = renderedLineSeparatorConstant
		}
		return renderFileLoop(submatches[3], lineSeparator, draftContext.DiffFiles)
	})
}

func renderFileLoop(loopBody string, lineSeparator string, diffFiles []string) string {
	renderedLines := make([]string, 0, len(diffFiles))
	for _, diffFile := range diffFiles {
		renderedLines = append(renderedLines, fileMarkerExpression.ReplaceAllLiteralString(loopBody, diffFile))
	}
	return strings.Join(renderedLines, lineSeparator)
}
