package flea

import "github.com/stashbroker/broker/pkg/types"

// ConditionPoints extracts the condition state used for listing ordering
// and per-unit price scaling. Items without a wear/charge component count
// as pristine (1/1/1).
func ConditionPoints(item *types.Item) types.Component {
	if item == nil {
		return types.Component{Points: 1, MaxPoints: 1, TemplateMaxPoints: 1}
	}

	// First value-carrying component decides the item's "condition".
	for _, kind := range []types.ComponentKind{
		types.ComponentRepairable,
		types.ComponentMedkit,
		types.ComponentResource,
		types.ComponentSideEffect,
		types.ComponentFoodDrink,
		types.ComponentKey,
		types.ComponentRepairKit,
	} {
		c, ok := item.Component(kind)
		if !ok {
			continue
		}
		if c.TemplateMaxPoints == 0 {
			c.TemplateMaxPoints = c.MaxPoints
		}
		if c.TemplateMaxPoints == 0 {
			c.TemplateMaxPoints = 1
		}
		return c
	}

	return types.Component{Points: 1, MaxPoints: 1, TemplateMaxPoints: 1}
}
