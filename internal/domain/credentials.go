package domain

// OwnerCredentials is the token/principal pair proving a caller created a
// meeting. The pair is generated and stored by the client layer; the core
// only receives and compares it, never assumes ambient access.
type OwnerCredentials struct {
	Token     string
	Principal string
}

func (c OwnerCredentials) Empty() bool {
	return c.Token == "" && c.Principal == ""
}
