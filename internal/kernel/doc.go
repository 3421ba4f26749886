// Package kernel provides the port/session rendezvous primitive the
// broker is built on: port pairs minted atomically by one factory call,
// with sessions counted against a fixed per-port capacity.
package kernel
