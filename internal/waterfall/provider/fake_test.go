package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/sells-group/derm-scout/pkg/exa"
	"github.com/sells-group/derm-scout/pkg/hunter"
	"github.com/sells-group/derm-scout/pkg/snov"
)

// fakeExa answers by include domain and records every request.
type fakeExa struct {
	mu           sync.Mutex
	requests     []exa.SearchRequest
	professional []exa.Result
	alternate    []exa.Result
	practice     []exa.Result
	errFor       map[string]error
}

func (f *fakeExa) Search(_ context.Context, req exa.SearchRequest) (*exa.SearchResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	kind := "practice"
	if len(req.IncludeDomains) > 0 {
		kind = strings.TrimSuffix(req.IncludeDomains[0], ".com")
	}
	if err := f.errFor[kind]; err != nil {
		return nil, err
	}
	switch kind {
	case "linkedin":
		return &exa.SearchResponse{Results: f.professional}, nil
	case "doximity":
		return &exa.SearchResponse{Results: f.alternate}, nil
	default:
		return &exa.SearchResponse{Results: f.practice}, nil
	}
}

func (f *fakeExa) request(domain string) (exa.SearchRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if domain == "" && len(r.IncludeDomains) == 0 {
			return r, true
		}
		if len(r.IncludeDomains) > 0 && r.IncludeDomains[0] == domain {
			return r, true
		}
	}
	return exa.SearchRequest{}, false
}

type fakeHunter struct {
	email *hunter.Email
	err   error
	calls []string
}

func (f *fakeHunter) FindEmail(_ context.Context, domain, first, last string) (*hunter.Email, error) {
	f.calls = append(f.calls, domain+"|"+first+"|"+last)
	return f.email, f.err
}

type fakeSnov struct {
	email *snov.Email
	err   error
}

func (f *fakeSnov) FindEmail(context.Context, string, string, string) (*snov.Email, error) {
	return f.email, f.err
}
