package model

// ContactField names a source-attributed field of a ContactRecord.
type ContactField string

const (
	FieldEmail           ContactField = "email"
	FieldPhone           ContactField = "phone"
	FieldProfessionalURL ContactField = "professional_url"
	FieldAlternateURL    ContactField = "alternate_url"
	FieldWebsite         ContactField = "website"
)

// ContactFields lists the source-attributed fields in display order.
var ContactFields = []ContactField{
	FieldEmail,
	FieldPhone,
	FieldProfessionalURL,
	FieldAlternateURL,
	FieldWebsite,
}

// ContactSource tags where a contact value came from.
type ContactSource string

const (
	SourceDescription     ContactSource = "youtube_description"
	SourceProfessionalURL ContactSource = "exa_linkedin"
	SourceAlternateURL    ContactSource = "exa_doximity"
	SourcePractice        ContactSource = "exa_practice"
	SourceFinderA         ContactSource = "hunter"
	SourceFinderB         ContactSource = "snov"
	SourceRegistry        ContactSource = "npi"
)

// SourceValue is a contact value paired with the source that produced it.
// A field of a ContactRecord is either nil or carries both halves.
type SourceValue struct {
	Value  string        `json:"value"`
	Source ContactSource `json:"source"`
}

// ContactRecord is the enriched contact information of a candidate.
type ContactRecord struct {
	Email           *SourceValue    `json:"email,omitempty"`
	Phone           *SourceValue    `json:"phone,omitempty"`
	ProfessionalURL *SourceValue    `json:"professional_url,omitempty"`
	AlternateURL    *SourceValue    `json:"alternate_url,omitempty"`
	Website         *SourceValue    `json:"website,omitempty"`
	SocialHandle    string          `json:"social_handle,omitempty"`
	PracticeDomain  string          `json:"practice_domain,omitempty"`
	SourcesChecked  []ContactSource `json:"sources_checked"`
}

func (r *ContactRecord) slot(f ContactField) **SourceValue {
	switch f {
	case FieldEmail:
		return &r.Email
	case FieldPhone:
		return &r.Phone
	case FieldProfessionalURL:
		return &r.ProfessionalURL
	case FieldAlternateURL:
		return &r.AlternateURL
	case FieldWebsite:
		return &r.Website
	}
	return nil
}

// Get returns the value of field f, or nil when unset.
func (r *ContactRecord) Get(f ContactField) *SourceValue {
	if s := r.slot(f); s != nil {
		return *s
	}
	return nil
}

// Has reports whether field f is filled.
func (r *ContactRecord) Has(f ContactField) bool {
	return r.Get(f) != nil
}

// Fill sets field f when it is still empty and value is non-empty. It
// reports whether the record changed.
func (r *ContactRecord) Fill(f ContactField, value string, src ContactSource) bool {
	s := r.slot(f)
	if s == nil || *s != nil || value == "" || src == "" {
		return false
	}
	*s = &SourceValue{Value: value, Source: src}
	return true
}

// MarkChecked appends src to the checked sources list.
func (r *ContactRecord) MarkChecked(src ContactSource) {
	r.SourcesChecked = append(r.SourcesChecked, src)
}
