package recipe

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/condatools/condafeed/internal/models"
	"github.com/sirupsen/logrus"
)

// templatedURLLine matches a url: line whose value still contains an
// unresolved {{ ... }} substitution. Group 1 is everything up to the value,
// group 2 the literal head before the template, group 3 the literal tail.
var templatedURLLine = regexp.MustCompile(`^(\s*-?\s*url:\s*)([^{]+)\{\{.*\}\}([^}]+)$`)

// ReplaceURLs rewrites templated url: lines in the template document so they
// point at the locally downloaded sources. The templated value cannot be
// compared literally, so a pattern built from its literal head and tail is
// matched against the known source URLs in declaration order. A matched line
// is kept verbatim as a comment with the replacement appended below it; an
// unmatched line passes through with a diagnostic, leaving the feedstock
// usable after a manual fix.
func ReplaceURLs(templatePath string, entries []models.SourceEntry, pkgsDir string) error {
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	lines := strings.Split(string(raw), "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		m := templatedURLLine.FindStringSubmatch(line)
		if m == nil {
			result = append(result, line)
			continue
		}

		pattern := regexp.MustCompile("^" + regexp.QuoteMeta(m[2]) + ".*" + regexp.QuoteMeta(m[3]))
		entry := matchEntry(entries, pattern)
		if entry == nil {
			logrus.Warnf("URL at %q not found", strings.TrimSpace(line))
			result = append(result, line)
			continue
		}

		local, err := filepath.Rel(filepath.Dir(templatePath), filepath.Join(pkgsDir, entry.LocalName))
		if err != nil {
			return &models.PipelineError{Type: models.ErrFileOp, Err: err}
		}

		result = append(result, "#"+line, m[1]+local)
	}

	if err := os.WriteFile(templatePath, []byte(strings.Join(result, "\n")), 0644); err != nil {
		return &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}
	return nil
}

func matchEntry(entries []models.SourceEntry, pattern *regexp.Regexp) *models.SourceEntry {
	for i := range entries {
		if pattern.MatchString(entries[i].URL) {
			return &entries[i]
		}
	}
	return nil
}
