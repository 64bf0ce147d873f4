package profilematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linkedInMarker = "linkedin.com/in/"

func TestScore_FullSignalProfile(t *testing.T) {
	s := NewScorer(nil)
	r := Result{
		URL:   "https://www.linkedin.com/in/jane-idriss-md",
		Title: "Jane Idriss, MD — Dermatology — Beverly Hills, CA",
	}
	ctx := Context{GivenName: "Jane", FamilyName: "Idriss", City: "Beverly Hills", Region: "CA"}

	got := s.Score(r, ctx, linkedInMarker)
	assert.GreaterOrEqual(t, got.Score, 95)
	assert.Equal(t, 110, got.Score)
	assert.Equal(t, "family:30 + given:30 + specialty:20 + city:15 + region:10 + credential:5", got.Breakdown)

	best, ok := s.Best([]Result{r}, ctx, linkedInMarker)
	require.True(t, ok)
	assert.Equal(t, r.URL, best.URL)
}

func TestScore_CommonSurnameWithoutGivenNameIsRejected(t *testing.T) {
	s := NewScorer(nil)
	r := Result{
		URL:   "https://www.linkedin.com/in/smith-dermatology",
		Title: "Dr. Smith — Dermatologist — Austin, TX",
	}
	ctx := Context{GivenName: "Robert", FamilyName: "Smith", City: "Austin", Region: "TX"}

	got := s.Score(r, ctx, linkedInMarker)
	assert.Zero(t, got.Score)

	_, ok := s.Best([]Result{r}, ctx, linkedInMarker)
	assert.False(t, ok)
}

func TestScore_CommonSurnameWithUnknownGivenName(t *testing.T) {
	got := NewScorer(nil).Score(Result{
		URL:   "https://www.linkedin.com/in/lee-derm",
		Title: "Lee Dermatology Beverly Hills CA MD",
	}, Context{FamilyName: "Lee", City: "Beverly Hills", Region: "CA"}, linkedInMarker)
	assert.Zero(t, got.Score)
}

func TestScore_InitialInSlug(t *testing.T) {
	s := NewScorer(nil)
	ctx := Context{GivenName: "Jonathan", FamilyName: "Okafor"}

	got := s.Score(Result{URL: "https://linkedin.com/in/j-okafor/", Title: "J. Okafor - Dermatologist"}, ctx, linkedInMarker)
	assert.Equal(t, 30+15+20, got.Score)

	got = s.Score(Result{URL: "https://linkedin.com/in/okafor-j", Title: "Okafor"}, ctx, linkedInMarker)
	assert.Equal(t, 30+15, got.Score)
}

func TestScore_Rejections(t *testing.T) {
	s := NewScorer(nil)
	ctx := Context{GivenName: "Jane", FamilyName: "Idriss"}

	got := s.Score(Result{URL: "https://www.doximity.com/pub/jane-idriss-md", Title: "Jane Idriss"}, ctx, linkedInMarker)
	assert.Zero(t, got.Score)
	assert.Equal(t, "wrong URL type", got.Breakdown)

	got = s.Score(Result{URL: "https://www.linkedin.com/in/jane-doe", Title: "Jane Doe, Dermatology"}, ctx, linkedInMarker)
	assert.Zero(t, got.Score)
	assert.Equal(t, "no family name match", got.Breakdown)
}

func TestScore_RegionWordBoundary(t *testing.T) {
	s := NewScorer([]string{"dermatolog"})
	ctx := Context{GivenName: "Ana", FamilyName: "Okoro", Region: "CA"}

	withRegion := s.Score(Result{URL: "https://linkedin.com/in/ana-okoro", Title: "Ana Okoro, CA"}, ctx, linkedInMarker)
	inWord := s.Score(Result{URL: "https://linkedin.com/in/ana-okoro", Title: "Ana Okoro, Cancer research"}, ctx, linkedInMarker)
	assert.Equal(t, 70, withRegion.Score)
	assert.Equal(t, 60, inWord.Score)

	ctx.Region = "California"
	full := s.Score(Result{URL: "https://linkedin.com/in/ana-okoro", Title: "Ana Okoro | Southern California"}, ctx, linkedInMarker)
	assert.Equal(t, 70, full.Score)
}

func TestScore_AccentFolding(t *testing.T) {
	got := NewScorer(nil).Score(Result{
		URL:   "https://linkedin.com/in/jose-nunez",
		Title: "José Núñez - Dermatology",
	}, Context{GivenName: "Jose", FamilyName: "Núñez"}, linkedInMarker)
	assert.Equal(t, 80, got.Score)
}

func TestBest_HighestWinsTiesKeepOrder(t *testing.T) {
	s := NewScorer(nil)
	ctx := Context{GivenName: "Jane", FamilyName: "Idriss"}
	results := []Result{
		{URL: "https://linkedin.com/in/jane-idriss-1?trk=x", Title: "Jane Idriss"},
		{URL: "https://linkedin.com/in/jane-idriss-2#about", Title: "Jane Idriss"},
		{URL: "https://linkedin.com/in/jane-idriss-3", Title: "Jane Idriss Dermatology"},
		{URL: "https://linkedin.com/in/jane-idriss-4", Title: "Jane Idriss Dermatology"},
	}

	best, ok := s.Best(results[:2], ctx, linkedInMarker)
	require.True(t, ok)
	assert.Equal(t, "https://linkedin.com/in/jane-idriss-1", best.URL)
	assert.Equal(t, 60, best.Score)

	best, ok = s.Best(results, ctx, linkedInMarker)
	require.True(t, ok)
	assert.Equal(t, "https://linkedin.com/in/jane-idriss-3", best.URL)
}

func TestBest_NoContextFallback(t *testing.T) {
	s := NewScorer(nil)
	results := []Result{
		{URL: "https://example.com/about", Title: "About"},
		{URL: "https://www.linkedin.com/in/someone?utm=1", Title: "Someone"},
	}

	best, ok := s.Best(results, Context{}, linkedInMarker)
	require.True(t, ok)
	assert.Equal(t, "https://www.linkedin.com/in/someone", best.URL)
	assert.Equal(t, "no-context-fallback", best.Breakdown)

	_, ok = s.Best(results[:1], Context{}, linkedInMarker)
	assert.False(t, ok)
}

func TestIsCommonSurname(t *testing.T) {
	assert.True(t, IsCommonSurname("SMITH"))
	assert.False(t, IsCommonSurname("Idriss"))
}
