package utils

import (
	"fmt"
)

// MissingFileError: a required input workbook does not exist. Fatal for the
// run that needs it; no partial output is written.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("required file not found: %s", e.Path)
}

// MissingColumnError: an expected header is absent from a loaded sheet.
// Indicates schema drift upstream; always fatal.
type MissingColumnError struct {
	Column string
	Sheet  string
}

func (e *MissingColumnError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("column %q not found in sheet %q", e.Column, e.Sheet)
	}
	return fmt.Sprintf("column %q not found", e.Column)
}

// NoVersionFoundError: no versioned snapshot exists at all for the date.
type NoVersionFoundError struct {
	Date string
	Dir  string
}

func (e *NoVersionFoundError) Error() string {
	return fmt.Sprintf("no version files found for date %s in %s", e.Date, e.Dir)
}

// VersionNotFoundError: a specific expected version is absent. Raised instead
// of silently falling back to some other version.
type VersionNotFoundError struct {
	Date    string
	Version int
	Dir     string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("version file %s.v%d not found in %s", e.Date, e.Version, e.Dir)
}
