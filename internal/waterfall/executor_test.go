package waterfall

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/derm-scout/internal/model"
	"github.com/sells-group/derm-scout/internal/resilience"
	"github.com/sells-group/derm-scout/internal/waterfall/provider"
)

// stubStep returns a fixed partial and counts its attempts.
type stubStep struct {
	name     string
	applies  func(*model.ContactRecord) bool
	partial  provider.Partial
	err      error
	attempts int
}

func (s *stubStep) Name() string { return s.name }

func (s *stubStep) Applies(rec *model.ContactRecord, _ provider.Subject) bool {
	return s.applies == nil || s.applies(rec)
}

func (s *stubStep) Attempt(_ context.Context, _ model.ContactRecord, _ provider.Subject) (provider.Partial, error) {
	s.attempts++
	return s.partial, s.err
}

func registryOf(steps ...provider.Step) *provider.Registry {
	r := provider.NewRegistry()
	for _, s := range steps {
		r.Register(s)
	}
	return r
}

func value(f model.ContactField, v string, src model.ContactSource) provider.Value {
	return provider.Value{Field: f, Value: v, Source: src}
}

func TestRun_EarlierStepWins(t *testing.T) {
	first := &stubStep{name: "first", partial: provider.Partial{
		Checked: []model.ContactSource{model.SourceDescription},
		Values: []provider.Value{
			value(model.FieldEmail, "jane@clinic.com", model.SourceDescription),
			value(model.FieldWebsite, "https://www.clinic.com/about", model.SourceDescription),
		},
		SocialHandle: "drjane",
	}}
	second := &stubStep{name: "second", partial: provider.Partial{
		Checked: []model.ContactSource{model.SourcePractice},
		Values: []provider.Value{
			value(model.FieldEmail, "other@else.com", model.SourcePractice),
			value(model.FieldPhone, "212-555-0100", model.SourcePractice),
		},
		SocialHandle: "ignored",
		Cost:         model.CostBreakdown{WebSearch: 0.016},
	}}

	out, err := NewExecutor(registryOf(first, second)).Run(context.Background(), provider.Subject{ChannelID: "UCx"})
	require.NoError(t, err)

	c := out.Contact
	assert.Equal(t, "jane@clinic.com", c.Email.Value)
	assert.Equal(t, model.SourceDescription, c.Email.Source)
	assert.Equal(t, "212-555-0100", c.Phone.Value)
	assert.Equal(t, model.SourcePractice, c.Phone.Source)
	assert.Equal(t, "drjane", c.SocialHandle)
	assert.Equal(t, "clinic.com", c.PracticeDomain)
	assert.Equal(t, []model.ContactSource{model.SourceDescription, model.SourcePractice}, c.SourcesChecked)

	assert.Equal(t, []FieldFill{
		{model.FieldEmail, model.SourceDescription},
		{model.FieldWebsite, model.SourceDescription},
		{model.FieldPhone, model.SourcePractice},
	}, out.Fills)
	assert.Equal(t, Tally{Searched: 1, Found: 1}, out.Tallies[model.SourceDescription])
	assert.Equal(t, Tally{Searched: 1, Found: 1}, out.Tallies[model.SourcePractice])
	assert.InDelta(t, 0.016, out.Cost.Total, 1e-9)
}

func TestRun_SkippedStepIsNotRecorded(t *testing.T) {
	gated := &stubStep{
		name:    "gated",
		applies: func(rec *model.ContactRecord) bool { return rec.PracticeDomain != "" },
		partial: provider.Partial{Checked: []model.ContactSource{model.SourceFinderA}},
	}

	out, err := NewExecutor(registryOf(gated)).Run(context.Background(), provider.Subject{})
	require.NoError(t, err)
	assert.Zero(t, gated.attempts)
	assert.Empty(t, out.Contact.SourcesChecked)
	assert.NotNil(t, out.Contact.SourcesChecked)
	assert.NotContains(t, out.Tallies, model.SourceFinderA)
	assert.Contains(t, out.Log, "gated: skipped")
}

func TestRun_CheckedEvenWhenNothingFound(t *testing.T) {
	empty := &stubStep{name: "empty", partial: provider.Partial{
		Checked: []model.ContactSource{model.SourceProfessionalURL, model.SourceAlternateURL},
	}}

	out, err := NewExecutor(registryOf(empty)).Run(context.Background(), provider.Subject{})
	require.NoError(t, err)
	assert.Equal(t, []model.ContactSource{model.SourceProfessionalURL, model.SourceAlternateURL}, out.Contact.SourcesChecked)
	assert.Equal(t, Tally{Searched: 1}, out.Tallies[model.SourceProfessionalURL])
}

func TestRun_ConfigFaultAborts(t *testing.T) {
	broken := &stubStep{name: "broken", err: eris.Wrap(resilience.ErrMissingCredentials, "exa: api key")}
	after := &stubStep{name: "after"}

	_, err := NewExecutor(registryOf(broken, after)).Run(context.Background(), provider.Subject{})
	require.Error(t, err)
	assert.True(t, resilience.IsConfigFault(err))
	assert.Zero(t, after.attempts)
}

func TestRun_IdempotentAndMonotonic(t *testing.T) {
	steps := []provider.Step{
		&stubStep{name: "a", partial: provider.Partial{
			Checked: []model.ContactSource{model.SourceDescription},
			Values:  []provider.Value{value(model.FieldProfessionalURL, "https://linkedin.com/in/a", model.SourceDescription)},
		}},
		&stubStep{name: "b", partial: provider.Partial{
			Checked: []model.ContactSource{model.SourceProfessionalURL},
			Values: []provider.Value{
				value(model.FieldProfessionalURL, "https://linkedin.com/in/b", model.SourceProfessionalURL),
				value(model.FieldAlternateURL, "https://doximity.com/pub/b", model.SourceAlternateURL),
			},
		}},
		&stubStep{name: "c", partial: provider.Partial{
			Checked: []model.ContactSource{model.SourceRegistry},
			Values:  []provider.Value{value(model.FieldPhone, "", model.SourceRegistry)},
		}},
	}
	exec := NewExecutor(registryOf(steps...))

	first, err := exec.Run(context.Background(), provider.Subject{})
	require.NoError(t, err)
	second, err := exec.Run(context.Background(), provider.Subject{})
	require.NoError(t, err)
	assert.Equal(t, first.Contact, second.Contact)

	assert.Equal(t, "https://linkedin.com/in/a", first.Contact.ProfessionalURL.Value)
	for _, f := range model.ContactFields {
		sv := first.Contact.Get(f)
		if sv != nil {
			assert.NotEmpty(t, sv.Value, f)
			assert.NotEmpty(t, sv.Source, f)
		}
	}
	assert.Nil(t, first.Contact.Phone, "empty values never fill")
}
