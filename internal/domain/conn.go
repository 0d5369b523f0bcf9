// Package domain contains entities without logic, just meta-data.
package domain

const MaxDisplayNameLen = 36

// ConnID identifies one live client channel. The transport assigns it at
// connect time; it is stable for the connection's lifetime and never
// persisted.
type ConnID string

// ClampDisplayName trims a client-supplied name to the allowed length.
// An empty result means the caller should fall back to a generated name.
func ClampDisplayName(name string) string {
	if len(name) > MaxDisplayNameLen {
		return name[:MaxDisplayNameLen]
	}
	return name
}
