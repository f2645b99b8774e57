package models

import "errors"

// ErrInputContract indicates malformed input from an upstream provider,
// such as an edge referencing a nonexistent item or a team with no
// capacity. Runs fail fast on it rather than producing a wrong plan.
var ErrInputContract = errors.New("input contract violation")
