package domain

// tipCategories holds the fixed suggestion lists keyed by category.
// Unrecognized categories fall back to "general".
var tipCategories = map[string][]string{
	"nutrition": {
		"Aim for a palm-sized portion of protein with every meal.",
		"Drink a glass of water before each meal to help with portion control.",
		"Prep your meals for the week on Sunday so busy days stay on track.",
		"Whole foods over supplements: fill the plate first, then consider the rest.",
	},
	"workout": {
		"Warm up for five minutes before lifting heavy.",
		"Progressive overload beats program hopping: add a little weight each week.",
		"Train the lifts you want to improve at least twice a week.",
		"Leave one or two reps in the tank on most sets.",
	},
	"general": {
		"Consistency beats intensity. Show up even on low-energy days.",
		"Sleep is a training tool: aim for eight hours.",
		"Track your habits daily; what gets measured gets managed.",
		"Rest days are part of the program, not a break from it.",
	},
}

func (e *Executor) suggestTip(category string) string {
	tips, ok := tipCategories[category]
	if !ok {
		tips = tipCategories["general"]
	}
	return tips[e.pickTip(len(tips))]
}
