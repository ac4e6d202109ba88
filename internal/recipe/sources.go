package recipe

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"

	"github.com/condatools/condafeed/internal/models"
	"gopkg.in/yaml.v3"
)

// versionOnlyName matches generic archive names like 1.2.3.tar.gz or
// v2.0-1.zip that carry no hint of which package they belong to.
var versionOnlyName = regexp.MustCompile(`^v?\d+([\-.]\d+)+(\.\w+)+$`)

// sourceStanza is one entry of the metadata document's source field.
type sourceStanza struct {
	URL    string `yaml:"url"`
	Fn     string `yaml:"fn"`
	MD5    string `yaml:"md5"`
	SHA256 string `yaml:"sha256"`
	SHA1   string `yaml:"sha1"`
}

// LoadURLs extracts the declared source entries from the rendered metadata
// document, in declaration order. Stanzas without a url (patch-only sources)
// are skipped. A source that declares no recognized hash cannot be trusted
// and fails with a MissingHash error before anything is downloaded.
//
// Hash kind precedence is md5 over sha256 over sha1, matching conda-build's
// historical behavior. Keep it that way: the recorded kind has to line up
// with what the recipe declares, not with the strongest available digest.
func LoadURLs(metaYAML string) ([]models.SourceEntry, error) {
	raw, err := os.ReadFile(metaYAML)
	if err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: err}
	}

	var doc struct {
		Source yaml.Node `yaml:"source"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("parse %s: %w", metaYAML, err)}
	}

	// source is either a single mapping or a sequence of mappings
	var stanzas []*yaml.Node
	switch doc.Source.Kind {
	case yaml.MappingNode:
		stanzas = []*yaml.Node{&doc.Source}
	case yaml.SequenceNode:
		stanzas = doc.Source.Content
	default:
		return nil, nil
	}

	var entries []models.SourceEntry
	for _, node := range stanzas {
		var s sourceStanza
		if err := node.Decode(&s); err != nil {
			return nil, &models.PipelineError{Type: models.ErrFileOp, Err: fmt.Errorf("parse source entry: %w", err)}
		}
		if s.URL == "" {
			continue
		}

		var kind, value string
		switch {
		case s.MD5 != "":
			kind, value = "md5", s.MD5
		case s.SHA256 != "":
			kind, value = "sha256", s.SHA256
		case s.SHA1 != "":
			kind, value = "sha1", s.SHA1
		default:
			return nil, &models.PipelineError{
				Type: models.ErrMissingHash,
				Err:  fmt.Errorf("source %s declares no md5, sha256 or sha1", s.URL),
			}
		}

		entries = append(entries, models.SourceEntry{
			URL:       s.URL,
			HashKind:  kind,
			HashValue: value,
			Filename:  s.Fn,
		})
	}

	return entries, nil
}

// DestinationName computes the local filename for a source entry. An explicit
// fn from the recipe wins; otherwise the URL's path basename is used. Names
// that are nothing but a version, like 1.2.3.tar.gz, get the package name
// prefixed so sources of different packages cannot collide in the shared
// pkgs directory.
func DestinationName(pkg string, e models.SourceEntry) string {
	fn := e.Filename
	if fn == "" {
		fn = urlBasename(e.URL)
	}
	if versionOnlyName.MatchString(fn) {
		fn = pkg + "-" + fn
	}
	return fn
}

func urlBasename(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return path.Base(raw)
	}
	return path.Base(u.Path)
}
