package synth

import "errors"

var (
	// ErrSynthesisFailure marks a single unit that could not be synthesized or
	// whose audio could not be stored. It never aborts sibling units.
	ErrSynthesisFailure = errors.New("synthesis failed")
	// ErrNoUnitsGenerated is returned when a chapter run ends without any saved unit.
	ErrNoUnitsGenerated = errors.New("no audio units generated")
	// ErrOutputLocked is returned when another run holds the output directory lock.
	ErrOutputLocked = errors.New("output directory is locked by another run")
)
