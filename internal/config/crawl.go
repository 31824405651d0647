package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/output"
)

// reservedFilenameChars may not appear in an output file name.
const reservedFilenameChars = `"\|/?,<>:;'{[}]*&^%`

// MaxVerbosity is the most detailed log level accepted by the CLI.
const MaxVerbosity = 4

// CrawlOptions are the per-run crawl settings supplied by the CLI or API.
type CrawlOptions struct {
	Reference string
	Name      string
	Degree    int
	Format    string
	Filename  string
	Verbosity int
}

// Validate rejects unusable options before any crawl work starts. A
// maxDegree of zero disables the upper bound on Degree.
func (o *CrawlOptions) Validate(maxDegree int) error {
	seed := models.Seed{Ref: o.Reference, Name: o.Name}
	if err := seed.Validate(); err != nil {
		return err
	}

	o.Reference, o.Name = seed.Ref, seed.Name

	if o.Degree < 1 {
		return &models.ConfigError{Field: "degree", Reason: fmt.Sprintf("must be a positive integer, got %d", o.Degree)}
	}

	if maxDegree > 0 && o.Degree > maxDegree {
		return &models.ConfigError{Field: "degree", Reason: fmt.Sprintf("must not exceed %d, got %d", maxDegree, o.Degree)}
	}

	if o.Format == "" {
		o.Format = string(output.FormatGraphML)
	}

	if _, err := output.ParseFormat(o.Format); err != nil {
		return err
	}

	if err := ValidateFilename(o.Filename); err != nil {
		return err
	}

	if o.Verbosity < 0 || o.Verbosity > MaxVerbosity {
		return &models.ConfigError{Field: "verbosity", Reason: fmt.Sprintf("must be between 0 and %d, got %d", MaxVerbosity, o.Verbosity)}
	}

	return nil
}

// Seed returns the crawl seed described by the options.
func (o *CrawlOptions) Seed() models.Seed {
	return models.Seed{Ref: o.Reference, Name: o.Name}
}

// ValidateFilename checks the base name of an output path for reserved
// characters. Empty and "-" mean standard output.
func ValidateFilename(path string) error {
	if path == "" || path == "-" {
		return nil
	}

	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return &models.ConfigError{Field: "filename", Reason: fmt.Sprintf("%q does not name a file", path)}
	}

	if i := strings.IndexAny(base, reservedFilenameChars); i >= 0 {
		return &models.ConfigError{Field: "filename", Reason: fmt.Sprintf("%q contains reserved character %q", base, base[i])}
	}

	return nil
}
