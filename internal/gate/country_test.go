package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/derm-scout/internal/model"
)

func ptr(s string) *string { return &s }

func TestIsDomestic(t *testing.T) {
	f := NewCountryFilter("US")

	tests := []struct {
		name    string
		country *string
		id      *model.Identity
		want    bool
	}{
		{"explicit us", ptr("US"), nil, true},
		{"explicit lowercase us", ptr("us"), nil, true},
		{"explicit empty", ptr(""), nil, true},
		{"explicit foreign", ptr("IN"), nil, false},
		{"explicit us overrides text", ptr("US"), &model.Identity{Location: "Mumbai, India"}, true},
		{"explicit foreign overrides text", ptr("GB"), &model.Identity{Location: "Austin, TX"}, false},
		{"no country, no identity", nil, nil, true},
		{"no country, domestic text", nil, &model.Identity{Location: "Miami, FL"}, true},
		{"indicator in location", nil, &model.Identity{Location: "Toronto, Canada"}, false},
		{"indicator in reasoning", nil, &model.Identity{Reasoning: "[Country: IN] practices in Delhi"}, false},
		{"uk as a word", nil, &model.Identity{Location: "London, UK"}, false},
		{"uk inside a word", nil, &model.Identity{Location: "Milwaukee, WI", Reasoning: "trained at Duke"}, true},
		{"australian demonym", nil, &model.Identity{Reasoning: "Australian dermatologist practicing in Sydney"}, false},
		{"brazilian demonym", nil, &model.Identity{Reasoning: "Brazilian board-certified dermatologist"}, false},
		{"pakistani demonym", nil, &model.Identity{Reasoning: "Pakistani physician, MBBS"}, false},
		{"nigerian demonym", nil, &model.Identity{Reasoning: "Nigerian doctor based in Lagos"}, false},
		{"indian demonym", nil, &model.Identity{Reasoning: "Indian dermatologist, MBBS MD"}, false},
		{"plural indicator", nil, &model.Identity{Reasoning: "treats Canadians via telehealth"}, false},
		{"indiana is domestic", nil, &model.Identity{Location: "Indianapolis, Indiana"}, true},
		{"germantown is domestic", nil, &model.Identity{Location: "Germantown, TN"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := model.Channel{ID: "UCx", Country: tt.country}
			assert.Equal(t, tt.want, f.IsDomestic(ch, tt.id))
		})
	}
}

func TestCountryFilter_Evaluate(t *testing.T) {
	f := NewCountryFilter("")

	got := f.Evaluate(model.Channel{Country: ptr("AU")}, nil)
	assert.False(t, got.Passed)
	assert.Equal(t, model.ReasonNonDomestic, got.Reason)
	assert.Equal(t, "channel country AU", got.Detail)

	assert.True(t, f.Evaluate(model.Channel{}, &model.Identity{Location: "Dallas, TX"}).Passed)
}
