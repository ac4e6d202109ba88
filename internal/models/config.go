package models

// FeedstockConfig contains configuration for the create command
type FeedstockConfig struct {
	Name        string // package name, without version or build string
	UpperBound  string // highest acceptable version, empty means newest
	BuildFilter string // build string substring, e.g. a python version tag
	DBPath      string
	WorkDir     string
	RecipesDir  string
	PkgsDir     string
}

// IndexConfig contains configuration for the index command
type IndexConfig struct {
	Output     string
	Arches     []string
	ChannelURL string
	CachePath  string // raw listing cache, reused when present
}
