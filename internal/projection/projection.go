// Package projection estimates outreach campaign outcomes from a run's
// verified candidates using fixed industry benchmark rates.
package projection

import (
	"math"

	"github.com/sells-group/derm-scout/internal/model"
)

// Benchmark conversion rates.
const (
	EmailOpenRate  = 0.22
	EmailReplyRate = 0.03
	EmailDemoRate  = 0.30

	LinkedInAcceptRate = 0.30
	LinkedInReplyRate  = 0.15
	LinkedInDemoRate   = 0.25

	DoximityReplyRate = 0.12
	DoximityDemoRate  = 0.35

	PhoneConnectRate    = 0.15
	PhoneInterestedRate = 0.20
	PhoneDemoRate       = 0.40

	DemoToSignup = 0.25
	// RevenuePerDoctor is first-year revenue per converted doctor in USD.
	RevenuePerDoctor = 9000.0
	// BenchmarkRunCost is used when the run itself spent nothing.
	BenchmarkRunCost = 2.15
)

// Calculate projects the outreach funnels of verified.
//
// Only gold and silver candidates count as reachable on any channel, so a
// bronze candidate with an email adds nothing to the email funnel. The
// projected cost is the run's own spend; BenchmarkRunCost stands in only
// when the run spent nothing.
func Calculate(verified []model.VerifiedCandidate, runCostUSD float64) model.Projections {
	var email, linkedin, doximity, phone, total int
	for _, v := range verified {
		if v.Verification.Tier == model.TierBronze {
			continue
		}
		total++
		c := v.Contact
		if c.Has(model.FieldEmail) {
			email++
		}
		if c.Has(model.FieldProfessionalURL) {
			linkedin++
		}
		if c.Has(model.FieldAlternateURL) {
			doximity++
		}
		if c.Has(model.FieldPhone) {
			phone++
		}
	}

	funnels := []model.ChannelFunnel{
		emailFunnel(email),
		linkedinFunnel(linkedin),
		doximityFunnel(doximity),
		phoneFunnel(phone),
	}

	p := model.Projections{TotalVerified: total, Funnels: funnels}
	for _, f := range funnels {
		p.TotalDemos += f.Demos
	}
	p.Signups = round(float64(p.TotalDemos) * DemoToSignup)
	p.Revenue = float64(p.Signups) * RevenuePerDoctor

	p.CostUSD = runCostUSD
	if p.CostUSD <= 0 {
		p.CostUSD = BenchmarkRunCost
	}
	p.ROI = (p.Revenue - p.CostUSD) / p.CostUSD
	return p
}

func emailFunnel(sent int) model.ChannelFunnel {
	replied := round(float64(sent) * EmailReplyRate)
	return model.ChannelFunnel{
		Channel:   "email",
		Reachable: sent,
		Engaged:   round(float64(sent) * EmailOpenRate),
		Responses: replied,
		Demos:     round(float64(replied) * EmailDemoRate),
	}
}

func linkedinFunnel(sent int) model.ChannelFunnel {
	accepted := round(float64(sent) * LinkedInAcceptRate)
	replied := round(float64(accepted) * LinkedInReplyRate)
	return model.ChannelFunnel{
		Channel:   "linkedin",
		Reachable: sent,
		Engaged:   accepted,
		Responses: replied,
		Demos:     round(float64(replied) * LinkedInDemoRate),
	}
}

func doximityFunnel(sent int) model.ChannelFunnel {
	replied := round(float64(sent) * DoximityReplyRate)
	return model.ChannelFunnel{
		Channel:   "doximity",
		Reachable: sent,
		Responses: replied,
		Demos:     round(float64(replied) * DoximityDemoRate),
	}
}

func phoneFunnel(calls int) model.ChannelFunnel {
	connected := round(float64(calls) * PhoneConnectRate)
	interested := round(float64(connected) * PhoneInterestedRate)
	return model.ChannelFunnel{
		Channel:   "phone",
		Reachable: calls,
		Engaged:   connected,
		Responses: interested,
		Demos:     round(float64(interested) * PhoneDemoRate),
	}
}

func round(f float64) int {
	return int(math.Round(f))
}
