// Package ipc defines the request/response marshalling convention for
// wire commands: a 32-bit command id, a fixed-width word buffer of
// inputs, and a reply that always leads with a result code followed by
// zero or more opaque handles.
package ipc
