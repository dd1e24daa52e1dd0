package stream

import "fmt"

// ProxyClassName is the synthetic name given to dynamic proxy classes.
const ProxyClassName = "<Dynamic Proxy Class>"

// FieldInfo describes one serializable field of a class.
type FieldInfo struct {
	Type TypeCode
	Name string
	// ClassName is the referenced type signature for array and object
	// fields. It is empty for primitives.
	ClassName string
}

// ClassInfo is the shape of a single class in an inheritance chain.
type ClassInfo struct {
	Name             string
	Handle           Handle
	SerialVersionUID int64
	Flags            ClassDescFlags
	Fields           []FieldInfo

	// super is the arena index of the superclass, or -1.
	super int
}

func (ci *ClassInfo) AddField(f FieldInfo) *FieldInfo {
	ci.Fields = append(ci.Fields, f)
	return &ci.Fields[len(ci.Fields)-1]
}

// Table is the class descriptor table of one parse session. ClassInfo
// entries live in an arena and are linked to their superclass by index, so
// a descriptor is just the index of its most-derived class and a
// back-reference to an ancestor is a view onto the same entries.
type Table struct {
	arena       []*ClassInfo
	descriptors []Descriptor
}

func NewTable() *Table {
	return &Table{}
}

// NewClass adds a class to the arena and returns it for population.
func (t *Table) NewClass(name string) (*ClassInfo, Descriptor) {
	ci := &ClassInfo{Name: name, Handle: NoHandle, super: -1}
	t.arena = append(t.arena, ci)
	return ci, Descriptor{table: t, head: len(t.arena) - 1}
}

// SetSuper makes super the ancestor chain of the class at the head of sub.
func (t *Table) SetSuper(sub Descriptor, super Descriptor) {
	if sub.IsNull() || super.IsNull() {
		return
	}
	t.arena[sub.head].super = super.head
}

// Record adds a fully parsed descriptor to the table.
func (t *Table) Record(d Descriptor) {
	if d.IsNull() {
		return
	}
	t.descriptors = append(t.descriptors, d)
}

// Resolve finds the first recorded class whose handle is h and returns the
// view starting at that class.
func (t *Table) Resolve(h Handle) (Descriptor, error) {
	for _, d := range t.descriptors {
		for i := d.head; i >= 0; i = t.arena[i].super {
			if t.arena[i].Handle == h {
				return Descriptor{table: t, head: i}, nil
			}
		}
	}
	return Descriptor{}, fmt.Errorf("%w (%s)", ErrUnresolvedClassReference, h)
}

// Super returns the superclass of ci, or nil for a root class.
func (t *Table) Super(ci *ClassInfo) *ClassInfo {
	if ci.super < 0 {
		return nil
	}
	return t.arena[ci.super]
}

// Descriptors returns every recorded descriptor in the order recorded.
func (t *Table) Descriptors() []Descriptor {
	return t.descriptors
}

// Classes returns every class in the arena in the order it was read.
func (t *Table) Classes() []*ClassInfo {
	return t.arena
}

// Descriptor is an inheritance chain: index 0 is the most-derived class,
// the last index is the root. The zero value is the null descriptor.
type Descriptor struct {
	table *Table
	head  int
}

func (d Descriptor) IsNull() bool {
	return d.table == nil
}

// Len returns the number of classes in the chain.
func (d Descriptor) Len() int {
	n := 0
	for i := d.index(); i >= 0; i = d.table.arena[i].super {
		n++
	}
	return n
}

// Class returns the i-th class of the chain, 0 being the most derived.
func (d Descriptor) Class(i int) *ClassInfo {
	for j := d.index(); j >= 0; j = d.table.arena[j].super {
		if i == 0 {
			return d.table.arena[j]
		}
		i--
	}
	return nil
}

// Classes returns the chain, most-derived first.
func (d Descriptor) Classes() []*ClassInfo {
	var classes []*ClassInfo
	for i := d.index(); i >= 0; i = d.table.arena[i].super {
		classes = append(classes, d.table.arena[i])
	}
	return classes
}

// Name returns the most-derived class name, or "" for the null descriptor.
func (d Descriptor) Name() string {
	if d.IsNull() {
		return ""
	}
	return d.table.arena[d.head].Name
}

func (d Descriptor) index() int {
	if d.IsNull() {
		return -1
	}
	return d.head
}
