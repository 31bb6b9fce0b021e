package meshkernel

import "github.com/meshkernel/meshkernel-go/pkg/meshkernel/internal/backend"

// Contacts returns the contacts computed last.
func (sc *Scope) Contacts() (Contacts, error) {
	var b backend.Contacts
	err := sc.exclusive("contacts_get", func() error {
		if err := sc.invoke("contacts_get_dimensions", func(id backend.ContextID) backend.Status {
			return sc.m.engine.ContactsDimensions(id, &b)
		}); err != nil {
			return err
		}
		b.Allocate()
		return sc.invoke("contacts_get_data", func(id backend.ContextID) backend.Status {
			return sc.m.engine.ContactsData(id, &b)
		})
	})
	if err != nil {
		return Contacts{}, err
	}
	return contactsFromBackend(b), nil
}

// The mask passed to every contact computation selects the Mesh1d nodes that
// may be connected. It must have one entry per Mesh1d node.

// ContactsComputeSingle connects each selected 1d node inside polygons to
// its closest face. An empty polygon list selects every node.
func (sc *Scope) ContactsComputeSingle(mask []bool, polygons GeometryList) error {
	return sc.contacts(backend.OpContactsComputeSingle, mask, polygons, 0)
}

// ContactsComputeMultiple connects every face the 1d network crosses to the
// closest selected 1d node.
func (sc *Scope) ContactsComputeMultiple(mask []bool) error {
	return sc.contacts(backend.OpContactsComputeMultiple, mask, GeometryList{}, 0)
}

// ContactsComputeWithPolygons makes one contact per polygon, between the
// closest pair of a face and a selected 1d node inside it.
func (sc *Scope) ContactsComputeWithPolygons(mask []bool, polygons GeometryList) error {
	return sc.contacts(backend.OpContactsComputeWithPolygons, mask, polygons, 0)
}

// ContactsComputeWithPoints connects the face containing each point to the
// closest 1d node.
func (sc *Scope) ContactsComputeWithPoints(mask []bool, points GeometryList) error {
	return sc.contacts(backend.OpContactsComputeWithPoints, mask, points, 0)
}

// ContactsComputeBoundary connects the boundary faces inside polygons to the
// closest selected 1d node within searchRadius.
func (sc *Scope) ContactsComputeBoundary(mask []bool, polygons GeometryList, searchRadius float64) error {
	if !positive(searchRadius) {
		return validationf(string(backend.OpContactsComputeBoundary), "search radius %g must be positive", searchRadius)
	}
	return sc.contacts(backend.OpContactsComputeBoundary, mask, polygons, searchRadius)
}

func (sc *Scope) contacts(op backend.Op, mask []bool, g GeometryList, radius float64) error {
	m := make([]int32, len(mask))
	for i, v := range mask {
		m[i] = flag(v)
	}
	return sc.run(op, &backend.ContactsArgs{Mesh1dMask: m, Geometry: g.toBackend(), SearchRadius: radius})
}
