//go:build !production

package circuit

// debugChecks gates the acyclicity assertion in Emit; single
// definition needs no check, since every gate gets a freshly
// allocated output wire. Left on by default; a `production` build tag strips the
// checks entirely (see circuit_release.go) once a circuit is known
// good, the way the teacher skips its cheap conservative checks only
// on paths it has already proven safe.
const debugChecks = true
