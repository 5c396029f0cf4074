// Package internal documents the FOMO server internals.
//
// The internal tree is organized by responsibility:
//   - api: HTTP handlers, middleware, problem responses and routing
//   - domain: users, events and tickets business rules
//   - storage: repository contracts and the Postgres implementation
//   - auth, audit, config, metrics, sanitize, telemetry, validation: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
