package cache

// ThreadKeyOpts are the query options that change a resolved thread.
type ThreadKeyOpts struct {
	Sort string `json:"sort"`
}

// ArtifactKeyOpts are the options that change a rendered diagram.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ThreadKey identifies the resolved thread of origin at a store revision.
	ThreadKey(origin, revision string, opts ThreadKeyOpts) string

	// ArtifactKey identifies a rendering of the thread with the given hash.
	ArtifactKey(threadHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ThreadKey returns "thread:<sha256>" over origin, revision and opts.
func (DefaultKeyer) ThreadKey(origin, revision string, opts ThreadKeyOpts) string {
	return hashKey("thread", origin, revision, opts)
}

// ArtifactKey returns "artifact:<sha256>" over threadHash and opts.
func (DefaultKeyer) ArtifactKey(threadHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", threadHash, opts)
}

var _ Keyer = DefaultKeyer{}
