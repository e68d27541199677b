package rate

// Key prefixes of the windows the engine uses.
const (
	LoginEmailPrefix = "rl:"
	LoginIPPrefix    = "rli:"
	RefreshPrefix    = "rr:"
)
