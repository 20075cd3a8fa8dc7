/*
Package ports defines the driven ports (interfaces) of the Paddock wizard.

These interfaces decouple the form core from external implementations, so the
same store, validator and navigator run against an in-memory or Redis session
store and against the live statistics API or a fake.

# Key Interfaces

  - DriverSource: reads the drivers list and the current driver standings.
  - StateStore: persists and loads wizard sessions.
  - DistributedLocker: serializes concurrent access to a session across replicas.
*/
package ports
