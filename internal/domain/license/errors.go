package license

import "errors"

var (
	// ErrLicenseNotFound is returned by the repository when no license
	// exists for a principal. Absence is a terminal denial, not a bug.
	ErrLicenseNotFound = errors.New("license not found")
)
