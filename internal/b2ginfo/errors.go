package b2ginfo

import "errors"

// ErrRootRequired is returned by Parse when b2g-info refused to run without
// root. No partial snapshot accompanies it.
var ErrRootRequired = errors.New("b2g-info needs to run as root")

// ErrMalformed is returned by Parse when the text has no header row.
var ErrMalformed = errors.New("malformed b2g-info output")
