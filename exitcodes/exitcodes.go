// Package exitcodes defines the standard exit codes used by the
// conformance orchestrator.
//
// * Success (0): every enabled category passed
// * TestFailure (1): the external suite reported at least one failing category
// * RuntimeErr (2): build, fixture-sync, configuration or spawn failures
package exitcodes

const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
