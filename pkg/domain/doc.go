/*
Package domain contains the core models of the Paddock wizard.

It is kept free of I/O so that every front-end (HTML server, terminal) and
every storage backend shares the exact same vocabulary.

# Key Entities

  - Driver / DriverStanding: records fetched from the racing-statistics API.
  - UserDetails: what the user typed or picked while moving through the steps.
  - FormState: the aggregate root holding step, user details, fetched lists,
    loading/error flags and per-field validation errors.
  - Session: a FormState plus the one-shot navigation state waiting to be
    applied on the next page load.
*/
package domain
