package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// Contacts pairs mesh1d nodes with mesh2d faces in the order the engine
// found them.
type Contacts struct {
	mesh1d, mesh2d []int32
}

// NewContacts validates and copies a contact list.
func NewContacts(mesh1dIndices, mesh2dIndices []int32) (Contacts, error) {
	if len(mesh1dIndices) != len(mesh2dIndices) {
		return Contacts{}, validationf("contacts", "%d mesh1d indices for %d mesh2d indices", len(mesh1dIndices), len(mesh2dIndices))
	}
	return Contacts{mesh1d: backend.Contiguous(mesh1dIndices), mesh2d: backend.Contiguous(mesh2dIndices)}, nil
}

func (c Contacts) Mesh1dIndices() []int32 { return backend.Contiguous(c.mesh1d) }
func (c Contacts) Mesh2dIndices() []int32 { return backend.Contiguous(c.mesh2d) }
func (c Contacts) Len() int               { return len(c.mesh1d) }

// Pair returns the i-th contact.
func (c Contacts) Pair(i int) (mesh1dNode, mesh2dFace int32) {
	return c.mesh1d[i], c.mesh2d[i]
}

func contactsFromBackend(b backend.Contacts) Contacts {
	return Contacts{mesh1d: b.Mesh1dIndices[:b.NumContacts], mesh2d: b.Mesh2dIndices[:b.NumContacts]}
}
