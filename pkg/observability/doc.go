/*
Package observability turns wizard lifecycle hooks into logs and Prometheus metrics.

Front-ends chain the hooks returned here into the form store and navigator with
domain.LifecycleHooks.Chain, so instrumentation never leaks into the core.
*/
package observability
