package model

import "time"

// VerifiedCandidate is the pipeline's output unit.
type VerifiedCandidate struct {
	Candidate    Candidate          `json:"candidate"`
	Identity     Identity           `json:"identity"`
	Verification VerificationResult `json:"verification"`
	Contact      ContactRecord      `json:"contact"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Name returns the candidate's display name.
func (v VerifiedCandidate) Name() string {
	return v.Identity.Name(v.Candidate.Channel.Title)
}

// GatedCandidate records a candidate dropped before verification.
type GatedCandidate struct {
	ChannelID string     `json:"channel_id"`
	Title     string     `json:"title"`
	Reason    GateReason `json:"reason"`
	Detail    string     `json:"detail,omitempty"`
}

// CostBreakdown is the monetary spend of a run per paid provider, in USD.
type CostBreakdown struct {
	LLM         float64 `json:"llm"`
	WebSearch   float64 `json:"web_search"`
	EmailFinder float64 `json:"email_finder"`
	Registry    float64 `json:"registry"`
	Total       float64 `json:"total"`
}

// Add returns the field-wise sum of c and o, with Total recomputed.
func (c CostBreakdown) Add(o CostBreakdown) CostBreakdown {
	out := CostBreakdown{
		LLM:         c.LLM + o.LLM,
		WebSearch:   c.WebSearch + o.WebSearch,
		EmailFinder: c.EmailFinder + o.EmailFinder,
		Registry:    c.Registry + o.Registry,
	}
	out.Total = out.LLM + out.WebSearch + out.EmailFinder + out.Registry
	return out
}

// RunStats are the aggregate counters of a run.
type RunStats struct {
	Discovered          int                `json:"discovered"`
	Gated               int                `json:"gated"`
	GateReasons         map[GateReason]int `json:"gate_reasons"`
	Identified          int                `json:"identified"`
	Verified            int                `json:"verified"`
	WithEmail           int                `json:"with_email"`
	WithProfessionalURL int                `json:"with_professional_url"`
	WithAlternateURL    int                `json:"with_alternate_url"`
	WithPhone           int                `json:"with_phone"`
}

// ProviderEffectiveness summarizes how often a contact source paid off.
type ProviderEffectiveness struct {
	Provider       ContactSource `json:"provider"`
	Searched       int           `json:"searched"`
	Found          int           `json:"found"`
	HitRate        int           `json:"hit_rate"`
	CostPerSuccess float64       `json:"cost_per_success"`
}

// DebugLog is the per-candidate decision trail.
type DebugLog struct {
	ChannelID    string   `json:"channel_id"`
	ChannelTitle string   `json:"channel_title"`
	Discovery    []string `json:"discovery"`
	Gate         []string `json:"gate"`
	Identity     []string `json:"identity"`
	Verification []string `json:"verification"`
	Enrichment   []string `json:"enrichment"`
	FinalStatus  string   `json:"final_status"`
}

// ChannelFunnel is the projected outreach funnel of one contact channel.
// Engaged counts the intermediate stage (opened, accepted, connected) and
// is zero for channels that have none.
type ChannelFunnel struct {
	Channel   string `json:"channel"`
	Reachable int    `json:"reachable"`
	Engaged   int    `json:"engaged"`
	Responses int    `json:"responses"`
	Demos     int    `json:"demos"`
}

// Projections estimates outreach outcomes for a run's verified candidates.
type Projections struct {
	TotalVerified int             `json:"total_verified"`
	Funnels       []ChannelFunnel `json:"funnels"`
	TotalDemos    int             `json:"total_demos"`
	Signups       int             `json:"signups"`
	Revenue       float64         `json:"revenue"`
	CostUSD       float64         `json:"cost_usd"`
	ROI           float64         `json:"roi"`
}

// RunResult is the aggregate outcome of one pipeline invocation.
type RunResult struct {
	RunID         string                                 `json:"run_id"`
	StartedAt     time.Time                              `json:"started_at"`
	FinishedAt    time.Time                              `json:"finished_at"`
	Queries       []string                               `json:"queries"`
	Verified      []VerifiedCandidate                    `json:"verified"`
	Gated         []GatedCandidate                       `json:"gated"`
	Stats         RunStats                               `json:"stats"`
	Costs         CostBreakdown                          `json:"costs"`
	QuotaUnits    int                                    `json:"quota_units"`
	FieldSources  map[ContactField]map[ContactSource]int `json:"field_sources"`
	Effectiveness []ProviderEffectiveness                `json:"effectiveness"`
	Projections   Projections                            `json:"projections"`
	DebugLogs     []DebugLog                             `json:"debug_logs"`
}
