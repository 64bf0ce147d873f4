package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/derm-scout/internal/model"
)

// renderSummary writes the verified candidates and provider effectiveness
// as tables.
func renderSummary(w io.Writer, res *model.RunResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(fmt.Sprintf("Verified physicians (%d of %d discovered)", res.Stats.Verified, res.Stats.Discovered))
	tw.AppendHeader(table.Row{"Name", "Tier", "Confidence", "NPI", "Email", "Phone", "LinkedIn"})
	for _, v := range res.Verified {
		npiNumber := ""
		if m := v.Verification.BestMatch; m != nil {
			npiNumber = fmt.Sprintf("%d", m.Number)
		}
		tw.AppendRow(table.Row{
			v.Name(),
			v.Verification.Tier,
			v.Verification.Confidence,
			npiNumber,
			fieldValue(v.Contact, model.FieldEmail),
			fieldValue(v.Contact, model.FieldPhone),
			fieldValue(v.Contact, model.FieldProfessionalURL),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "Cost", fmt.Sprintf("$%.4f", res.Costs.Total)})
	tw.Render()

	ew := table.NewWriter()
	ew.SetOutputMirror(w)
	ew.SetTitle("Provider effectiveness")
	ew.AppendHeader(table.Row{"Provider", "Searched", "Found", "Hit rate", "Cost / success"})
	for _, e := range res.Effectiveness {
		ew.AppendRow(table.Row{e.Provider, e.Searched, e.Found, fmt.Sprintf("%d%%", e.HitRate), fmt.Sprintf("$%.4f", e.CostPerSuccess)})
	}
	ew.Render()

	if len(res.Stats.GateReasons) > 0 {
		gw := table.NewWriter()
		gw.SetOutputMirror(w)
		gw.SetTitle("Gated")
		gw.AppendHeader(table.Row{"Reason", "Count"})
		for _, r := range []model.GateReason{
			model.ReasonLowReach, model.ReasonInactive, model.ReasonNoUploads,
			model.ReasonExtractionFailed, model.ReasonNotProfessional, model.ReasonNonDomestic,
		} {
			if n := res.Stats.GateReasons[r]; n > 0 {
				gw.AppendRow(table.Row{r, n})
			}
		}
		gw.Render()
	}
}

func fieldValue(c model.ContactRecord, f model.ContactField) string {
	if sv := c.Get(f); sv != nil {
		return sv.Value
	}
	return ""
}
