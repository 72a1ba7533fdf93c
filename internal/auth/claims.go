package auth

// Claims represents the verified profile facts returned by the OAuth
// provider's userinfo endpoint. It contains facts only, no decisions.
type Claims struct {
	Email      string // stable external identity key, always present
	GivenName  string // optional, empty when the provider omits it
	FamilyName string // optional, empty when the provider omits it
}
