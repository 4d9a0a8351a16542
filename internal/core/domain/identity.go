package domain

// IdentityKind is the role an identity plays in the marketplace.
type IdentityKind string

const (
	IdentityNone        IdentityKind = "none"
	IdentityClient      IdentityKind = "client"
	IdentityTransporter IdentityKind = "transporter"
)

// Identity is the per-request resolution of a Principal into exactly one of
// Client, Transporter or neither. Only the ID matching Kind is set.
type Identity struct {
	Principal
	Kind          IdentityKind
	ClientID      uint
	TransporterID uint
}

func (i Identity) IsClient() bool      { return i.Kind == IdentityClient }
func (i Identity) IsTransporter() bool { return i.Kind == IdentityTransporter }

// ResolveIdentity builds the tagged Identity from the profiles found for a
// principal. Holding both profiles is rejected instead of picking one.
func ResolveIdentity(p Principal, client *Client, transporter *Transporter) (Identity, error) {
	id := Identity{Principal: p, Kind: IdentityNone}
	switch {
	case client != nil && transporter != nil:
		return Identity{}, ErrAmbiguousIdentity
	case client != nil:
		id.Kind = IdentityClient
		id.ClientID = client.ID
	case transporter != nil:
		id.Kind = IdentityTransporter
		id.TransporterID = transporter.ID
	}
	return id, nil
}
