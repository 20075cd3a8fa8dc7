/*
Package form implements the wizard's form state store.

A Store is constructed per session and passed to whoever needs it; there is no
package-level instance. All mutations go through named actions:

  - SetStep, SetBasicInfo, SelectDriver, SetValidationErrors, ClearForm
  - FetchDrivers, FetchDriverStandings

Both fetch actions share one three-phase handler (pending, fulfilled,
rejected) parameterized by the list field it fills. A failed fetch never
surfaces as an error to the caller; it lands in FormState.Error.
*/
package form
