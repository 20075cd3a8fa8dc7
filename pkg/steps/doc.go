// Package steps holds the view models of the three wizard steps.
//
// Views read from a form store and forward raw input back to it. They own no
// business rules beyond resolving a picked driver ID against the fetched list
// and deciding when entering a step should trigger a fetch.
package steps
