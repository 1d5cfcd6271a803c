package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile string
	BaseURL string
	Token   string
	DataDir string
	Locale  string
	Verbose bool

	// login
	Username string
	Password string

	// push
	File       string
	EditFormat string

	// export
	Format string
	Out    string

	// history
	Limit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Format: "csv",
		Limit:  20,
	}
}
