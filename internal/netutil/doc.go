// Package netutil allocates TCP ports for launched applications.
//
// RandomPort is the stateless "give me a vacant port" helper. PortRegistry
// additionally remembers which ports it handed out, so concurrent launchers
// in one test binary never receive the same port, and optionally holds a
// file lock per port so separate test binaries sharing a lock directory do
// not either.
package netutil
