package models

// PackageRecord represents one published build of a package on the channel
type PackageRecord struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	URL       string   `json:"url"`
	Depends   []string `json:"depends"`
	NV        string   `json:"nv"`
	Timestamp int64    `json:"timestamp"`
	Build     string   `json:"build"`

	// Subdir is the channel platform directory the artifact lives in. It is
	// only needed to derive URL and is not part of the database file.
	Subdir string `json:"-"`
}

// SourceEntry represents one source artifact declared by a recipe
type SourceEntry struct {
	URL       string
	HashKind  string // md5, sha256 or sha1
	HashValue string
	Filename  string // explicit fn from the recipe, may be empty
	LocalName string // destination filename in the pkgs dir, set by the pipeline
}
