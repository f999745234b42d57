// Package secrets derives purpose-bound keys from operator supplied master
// secrets.
//
// A master secret (for example one COOKIE_SECRETS entry) is never used
// directly. Derive runs HKDF-SHA-256 over it with a purpose label, so the
// same master can serve several components without their keys colliding.
// Rotating a master rotates every key derived from it.
//
//	key, err := secrets.Derive([]byte(master), "dealdocs device cookie")
//	if err != nil {
//	    // handle error
//	}
//
// All errors wrap a package sentinel; match them with errors.Is.
package secrets
