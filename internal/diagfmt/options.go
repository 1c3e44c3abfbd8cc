package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto prints paths as the file set stores them.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	// PathModeRelative is relative to PrettyOpts.BaseDir / JSONOpts.BaseDir.
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	Context   int8 // lines shown around the primary one
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
	// Max limits printed diagnostics; 0 = all in the bag.
	Max int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int
	IncludeNotes     bool
}
