package waterfall

import "github.com/sells-group/derm-scout/internal/model"

// Tally counts how often a source was consulted and how often it filled at
// least one field.
type Tally struct {
	Searched int `json:"searched"`
	Found    int `json:"found"`
}

// FieldFill records one successful fill.
type FieldFill struct {
	Field  model.ContactField  `json:"field"`
	Source model.ContactSource `json:"source"`
}

// Outcome is the result of running the waterfall for one candidate. The
// caller folds Fills, Tallies and Cost into its run totals.
type Outcome struct {
	Contact model.ContactRecord           `json:"contact"`
	Fills   []FieldFill                   `json:"fills"`
	Tallies map[model.ContactSource]Tally `json:"tallies"`
	Cost    model.CostBreakdown           `json:"cost"`
	Log     []string                      `json:"log"`
}
