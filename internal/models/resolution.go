package models

// Resolution is the outcome of geocoding one address.
// The zero value means the address was not found.
type Resolution struct {
	Coordinates *Coordinates // Coordinates is nil when no provider found the address.
	Provider    string       // Provider is the name of the provider that answered.
}

// Found returns a resolution holding coords obtained from provider.
func Found(coords Coordinates, provider string) Resolution {
	return Resolution{Coordinates: &coords, Provider: provider}
}

// Found reports whether the address was resolved.
func (r Resolution) Found() bool {
	return r.Coordinates != nil
}
