package domain

// Identity is the authenticated principal as seen by the portal.
type Identity struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	Role       Role              `json:"role"`
	UnitNumber string            `json:"unit_number,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Clone returns a deep copy of the identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Attributes != nil {
		c.Attributes = make(map[string]string, len(i.Attributes))
		for k, v := range i.Attributes {
			c.Attributes[k] = v
		}
	}
	return &c
}

// Session is the derived view a route guard evaluates.
type Session struct {
	Identity  *Identity
	IsLoading bool
}

func (s Session) IsAuthenticated() bool { return s.Identity != nil }
