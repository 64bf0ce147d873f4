package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Anthropic   map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Exa         ExaRate              `yaml:"exa" mapstructure:"exa"`
	EmailFinder EmailFinderRate      `yaml:"email_finder" mapstructure:"email_finder"`
	YouTube     QuotaRate            `yaml:"youtube" mapstructure:"youtube"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ExaRate holds Exa search pricing.
type ExaRate struct {
	PerSearch  float64 `yaml:"per_search" mapstructure:"per_search"`
	PerContent float64 `yaml:"per_content" mapstructure:"per_content"`
}

// EmailFinderRate holds the per-lookup price of each email finder.
type EmailFinderRate struct {
	Hunter float64 `yaml:"hunter" mapstructure:"hunter"`
	Snov   float64 `yaml:"snov" mapstructure:"snov"`
}

// QuotaRate holds YouTube Data API quota units per call type.
type QuotaRate struct {
	Search       int `yaml:"search" mapstructure:"search"`
	ChannelBatch int `yaml:"channel_batch" mapstructure:"channel_batch"`
	VideoList    int `yaml:"video_list" mapstructure:"video_list"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Rates returns the calculator's rate table.
func (c *Calculator) Rates() Rates {
	return c.rates
}

// Claude computes the cost of a Claude call. Unknown models cost nothing.
func (c *Calculator) Claude(model string, input, output int64) float64 {
	rate, ok := c.rates.Anthropic[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// ExaSearch computes the cost of n searches returning contents for
// contentResults results in total.
func (c *Calculator) ExaSearch(n, contentResults int) float64 {
	return float64(n)*c.rates.Exa.PerSearch + float64(contentResults)*c.rates.Exa.PerContent
}

// Hunter returns the cost of one Hunter lookup.
func (c *Calculator) Hunter() float64 {
	return c.rates.EmailFinder.Hunter
}

// Snov returns the cost of one Snov lookup.
func (c *Calculator) Snov() float64 {
	return c.rates.EmailFinder.Snov
}

// SearchQuota returns the quota units of one YouTube search call.
func (c *Calculator) SearchQuota() int {
	return c.rates.YouTube.Search
}

// ChannelBatchQuota returns the quota units of one channel detail batch.
func (c *Calculator) ChannelBatchQuota() int {
	return c.rates.YouTube.ChannelBatch
}

// VideoListQuota returns the quota units of one upload listing call.
func (c *Calculator) VideoListQuota() int {
	return c.rates.YouTube.VideoList
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		Exa:         ExaRate{PerSearch: 0.005, PerContent: 0.001},
		EmailFinder: EmailFinderRate{},
		YouTube:     QuotaRate{Search: 100, ChannelBatch: 1, VideoList: 1},
	}
}
