/*
Package session implements wizard session management and persistence orchestration.

A session holds one visitor's form state between requests. The Manager serializes
read-modify-write cycles per session ID with reference-counted local locks and,
when configured, a distributed lock so several replicas can share one store.
*/
package session
