package types

// ComponentKind identifies one of the recognized condition components an
// item instance may carry. The set is closed: pricing code dispatches over
// it with an exhaustive switch, so adding a kind without handling it is a
// compile-visible change in one place.
type ComponentKind int

const (
	ComponentRepairable ComponentKind = iota
	ComponentBuff
	ComponentDogtag
	ComponentKey
	ComponentResource
	ComponentSideEffect
	ComponentMedkit
	ComponentFoodDrink
	ComponentRepairKit
)

// ValuationOrder is the fixed order in which component adjustments compose
// when an item carries more than one value-affecting component.
//
//nolint:gochecknoglobals // closed enum ordering
var ValuationOrder = []ComponentKind{
	ComponentRepairable,
	ComponentBuff,
	ComponentDogtag,
	ComponentKey,
	ComponentResource,
	ComponentSideEffect,
	ComponentMedkit,
	ComponentFoodDrink,
	ComponentRepairKit,
}

func (k ComponentKind) String() string {
	switch k {
	case ComponentRepairable:
		return "repairable"
	case ComponentBuff:
		return "buff"
	case ComponentDogtag:
		return "dogtag"
	case ComponentKey:
		return "key"
	case ComponentResource:
		return "resource"
	case ComponentSideEffect:
		return "side-effect"
	case ComponentMedkit:
		return "medkit"
	case ComponentFoodDrink:
		return "food-drink"
	case ComponentRepairKit:
		return "repair-kit"
	default:
		return "unknown"
	}
}

// Component holds the condition state for one component kind.
// MaxPoints is the item's current maximum (it degrades with use);
// TemplateMaxPoints is the factory maximum from the catalog template.
// Points may legitimately be 0 for a fully depleted item.
type Component struct {
	Kind              ComponentKind `json:"kind"`
	Points            float64       `json:"points"`
	MaxPoints         float64       `json:"maxPoints"`
	TemplateMaxPoints float64       `json:"templateMaxPoints"`
	BuffType          string        `json:"buffType,omitempty"` // only for ComponentBuff
}

// Item is a concrete owned item instance. The engine never mutates items;
// tree membership (Children) is fixed for the lifetime of a request.
type Item struct {
	ID             string                      `json:"id"`
	TemplateID     string                      `json:"templateId"`
	StackCount     int                         `json:"stackCount"`
	FoundInSession bool                        `json:"foundInSession"`
	Components     map[ComponentKind]Component `json:"components,omitempty"`
	Children       []*Item                     `json:"children,omitempty"`
}

// StackObjectsCount returns the stack size, defaulting to 1 for items that
// never carried a stack counter.
func (i *Item) StackObjectsCount() int {
	if i.StackCount < 1 {
		return 1
	}
	return i.StackCount
}

// Component returns the component of the given kind, if attached.
func (i *Item) Component(kind ComponentKind) (Component, bool) {
	c, ok := i.Components[kind]
	return c, ok
}

// HasComponent reports whether a component of the given kind is attached.
func (i *Item) HasComponent(kind ComponentKind) bool {
	_, ok := i.Components[kind]
	return ok
}

// Flatten returns the item and all of its descendants, root first,
// depth-first. The returned slice shares the item pointers.
func (i *Item) Flatten() []*Item {
	out := []*Item{i}
	for _, child := range i.Children {
		out = append(out, child.Flatten()...)
	}
	return out
}

// FullCount returns the recursive stack count of the item and all children.
func (i *Item) FullCount() int {
	total := 0
	for _, it := range i.Flatten() {
		total += it.StackObjectsCount()
	}
	return total
}
