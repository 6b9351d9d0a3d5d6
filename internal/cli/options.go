package cli

// Options is the fully-parsed configuration for a single invocation.
//
// It supports both:
// - mergetool-style positional args: <BASE> <LOCAL> <REMOTE> <MERGED>
// - standalone flags: --base/--local/--remote/--merged
type Options struct {
	BasePath   string
	LocalPath  string
	RemotePath string
	MergedPath string

	ApplyAll string // local|incoming|base|both
	Check    bool

	Backup  bool
	Verbose bool

	AllowMissingBase bool
}
