// Package cookie writes and verifies HMAC-SHA256 signed cookies.
//
// The web surface identifies a device by a random id kept in a signed
// cookie:
//
//	m, err := cookie.NewFromConfig(cfg)
//	m.SetSigned(w, "dealdocs_device", id)
//	id, err := m.GetSigned(r, "dealdocs_device")
//
// Several secrets may be configured. New cookies are signed with the first
// one and cookies signed with any of them verify.
package cookie
