package garden

import (
	"encoding/json"
	"strings"
)

// AnonymousLabel is shown for any presence that did not leave a name.
const AnonymousLabel = "A passing mind"

// PresenceKind discriminates the Presence variants.
type PresenceKind string

const (
	PresenceNamed     PresenceKind = "named"
	PresenceUnnamed   PresenceKind = "unnamed"
	PresenceTemporary PresenceKind = "temporary"
)

// Presence identifies who planted or tended something. Only named presences
// carry a displayable name.
type Presence struct {
	Kind PresenceKind
	Name string // set when Kind is PresenceNamed
	ID   string // set when Kind is PresenceTemporary
}

// Named returns a named presence.
func Named(name string) Presence {
	return Presence{Kind: PresenceNamed, Name: name}
}

// Unnamed returns an anonymous presence.
func Unnamed() Presence {
	return Presence{Kind: PresenceUnnamed}
}

// Label returns the name to attribute activity to.
func (p Presence) Label() string {
	if p.Kind == PresenceNamed {
		if name := strings.TrimSpace(p.Name); name != "" {
			return name
		}
	}
	return AnonymousLabel
}

type presenceJSON struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Presence) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PresenceNamed:
		return json.Marshal(presenceJSON{Type: string(PresenceNamed), Name: p.Name})
	case PresenceTemporary:
		return json.Marshal(presenceJSON{Type: string(PresenceTemporary), ID: p.ID})
	default:
		return json.Marshal(presenceJSON{Type: string(PresenceUnnamed)})
	}
}

// UnmarshalJSON implements json.Unmarshaler. It never fails: any shape that
// is not a recognised variant decodes as an unnamed presence.
func (p *Presence) UnmarshalJSON(data []byte) error {
	var raw presenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		*p = Unnamed()
		return nil
	}

	switch PresenceKind(raw.Type) {
	case PresenceNamed:
		if strings.TrimSpace(raw.Name) == "" {
			*p = Unnamed()
			return nil
		}
		*p = Named(raw.Name)
	case PresenceTemporary:
		*p = Presence{Kind: PresenceTemporary, ID: raw.ID}
	default:
		*p = Unnamed()
	}
	return nil
}
