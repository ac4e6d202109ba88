package recipe

import (
	"os"
	"strings"

	"github.com/condatools/condafeed/internal/models"
)

// requirementSections are the subsection keys that belong to the
// requirements block. Any other key line ends the block.
var requirementSections = map[string]bool{
	"host:":            true,
	"run:":             true,
	"build:":           true,
	"run_constrained:": true,
}

// ExtractRequirements pulls the requirements: block out of the metadata
// document as plain text for manual review. Lines are matched on their
// trimmed form but emitted as written, so the block keeps its indentation.
//
// This is a deliberate line scan, not a YAML parse: recipes routinely carry
// unexpanded template conditionals inside the block that no structured parser
// accepts, and the output is meant for human eyes anyway.
func ExtractRequirements(metaYAML string) (string, error) {
	raw, err := os.ReadFile(metaYAML)
	if err != nil {
		return "", &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	var result []string
	inRequirements := false
	for _, line := range strings.Split(string(raw), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !inRequirements {
			if !strings.HasPrefix(trimmed, "requirements:") {
				continue
			}
			inRequirements = true
			result = append(result, line)
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "#"):
			// comments are dropped, the block continues
		case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "-"):
			// template conditionals and list items never end the block
			result = append(result, line)
		case strings.HasSuffix(trimmed, ":") && !requirementSections[trimmed]:
			inRequirements = false
		default:
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n"), nil
}
