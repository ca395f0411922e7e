package excel

// Config holds configuration for Excel adapter
type Config struct {
	Dir string // Directory holding one .xlsx workbook per spreadsheet
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Dir == "" {
		return ErrMissingDir
	}
	return nil
}
