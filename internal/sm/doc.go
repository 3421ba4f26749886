// Package sm implements the root service manager: the broker that lets
// a process register a named service and lets every other process
// resolve that name to a live session.
//
// The broker has three pieces:
//   - ServiceRegistry: the name → connector table with validation and
//     uniqueness enforcement
//   - SM: the wire-facing root dispatcher (Initialize, GetService)
//   - Controller: the administrative sibling on a disjoint command
//     namespace
//
// Names are 1-8 byte case-sensitive sequences with no embedded NUL,
// carried on the wire in a fixed 8-byte NUL-padded buffer. GetService
// replies carry at most one handle: a session on success, or - on the
// capacity-exceeded fallback only - the port's connector, so the caller
// can retry once a slot frees up.
package sm
