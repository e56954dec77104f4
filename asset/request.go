package asset

// Request asks for the asset at Path to be loaded and stored under
// Alias. Config is loader specific and may be nil.
type Request struct {
	Kind   Kind
	Path   string
	Alias  string
	Config interface{}
}

// Resolver finds content-relative paths across content packs. Loaders
// go through it and never touch the filesystem directly.
type Resolver interface {

	// Find returns a locator for the pack copy of rel that wins,
	// or an error wrapping ErrResourceNotFound.
	Find(rel string) (string, error)

	// ListDirectory returns the entry names in dir merged across packs.
	ListDirectory(dir string) ([]string, error)

	// ReadFile reads rel from the pack that wins.
	ReadFile(rel string) ([]byte, error)
}
