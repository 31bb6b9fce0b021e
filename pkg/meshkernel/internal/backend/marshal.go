package backend

import "fmt"

// Numeric is the set of element types the engine layouts carry.
type Numeric interface {
	~int32 | ~float64
}

// Contiguous returns a fresh dense copy of src. A zero-length input produces
// an explicit empty slice rather than nil so the engine always receives a
// valid base address.
func Contiguous[T Numeric](src []T) []T {
	out := make([]T, len(src))
	copy(out, src)
	return out
}

// Strided is a non-contiguous view over a backing slice: element i lives at
// Data[Offset+i*Stride].
type Strided[T Numeric] struct {
	Data   []T
	Offset int
	Stride int
	Len    int
}

// Gather materialises the view into a dense slice. Every addressed element
// must lie inside Data.
func (s Strided[T]) Gather() ([]T, error) {
	if s.Len < 0 {
		return nil, fmt.Errorf("strided view: negative length %d", s.Len)
	}
	if s.Offset < 0 {
		return nil, fmt.Errorf("strided view: negative offset %d", s.Offset)
	}
	out := make([]T, s.Len)
	if s.Len == 0 {
		return out, nil
	}
	if s.Stride < 1 {
		return nil, fmt.Errorf("strided view: stride %d must be positive", s.Stride)
	}
	last := s.Offset + (s.Len-1)*s.Stride
	if last >= len(s.Data) {
		return nil, fmt.Errorf("strided view: element %d at offset %d exceeds backing length %d", s.Len-1, last, len(s.Data))
	}
	for i := range out {
		out[i] = s.Data[s.Offset+i*s.Stride]
	}
	return out, nil
}

// TakeGeometry copies an engine-owned geometry out and releases the
// allocation. The returned slices never alias engine memory.
func TakeGeometry(e Engine, op string, a Allocation) (GeometryList, error) {
	g := GeometryList{
		GeometrySeparator:   a.Geometry.GeometrySeparator,
		InnerOuterSeparator: a.Geometry.InnerOuterSeparator,
		X:                   Contiguous(a.Geometry.X),
		Y:                   Contiguous(a.Geometry.Y),
		Values:              Contiguous(a.Geometry.Values),
	}
	if a.ID == 0 {
		return g, nil
	}
	if err := Check(e, op+": free", e.Free(a.ID)); err != nil {
		return GeometryList{}, err
	}
	return g, nil
}

// CopyGeometry prepares a caller geometry for an engine call.
func CopyGeometry(g GeometryList) GeometryList {
	return GeometryList{
		GeometrySeparator:   g.GeometrySeparator,
		InnerOuterSeparator: g.InnerOuterSeparator,
		X:                   Contiguous(g.X),
		Y:                   Contiguous(g.Y),
		Values:              Contiguous(g.Values),
	}
}
