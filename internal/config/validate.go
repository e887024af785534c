package config

import "fmt"

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if c.Entry == "" {
		return fmt.Errorf("entry must not be empty")
	}
	if c.TSConfig == "" {
		return fmt.Errorf("tsconfig must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	return nil
}

// ValidationResult holds detailed config validation results: errors that
// make the config unusable, and warnings about likely mistakes that still
// leave it usable.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid reports whether there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateDetailed performs Validate's checks plus a warning for each watch
// extension missing its leading dot. The output path is only checked for
// being non-empty; its form is not inspected.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	if c.Entry == "" {
		result.Errors = append(result.Errors, "entry: must not be empty")
	}
	if c.TSConfig == "" {
		result.Errors = append(result.Errors, "tsconfig: must not be empty")
	}
	if c.Output == "" {
		result.Errors = append(result.Errors, "output: must not be empty")
	}

	for _, ext := range c.Watch.Extensions {
		if ext == "" || ext[0] != '.' {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("watch.extensions: %q should start with a leading dot", ext))
		}
	}

	return result
}
