package place

import "github.com/google/uuid"

// Place is the payload stored in the index. Two places are equal only if
// both the ID and the name match.
type Place struct {
	ID   uuid.UUID
	Name string
}

func New(name string) Place {
	return Place{
		ID:   uuid.New(),
		Name: name,
	}
}

func (p Place) String() string {
	return p.Name
}
