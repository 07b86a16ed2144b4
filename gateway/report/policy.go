package report

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	contractx "github.com/agencymesh/insurance-mcp-gateway/gateway/contract"
)

// PolicyDetailsParams identifies a policy by id or number; at least one is
// required. Section flags select the optional attachments.
type PolicyDetailsParams struct {
	PolicyID        string
	PolicyNumber    string
	IncludeCoverage bool
	IncludeBilling  bool
	IncludeClaims   bool
}

// ComplianceStatus is a stub: no real compliance check exists in the
// gateway, so every policy reports compliant with no issues.
type ComplianceStatus struct {
	Compliant bool      `json:"compliant"`
	Issues    []string  `json:"issues"`
	CheckedAt time.Time `json:"checked_at"`
}

type PolicyDetails struct {
	Policy           contractx.Record   `json:"policy"`
	Coverage         []contractx.Record `json:"coverage"`
	Billing          []contractx.Record `json:"billing"`
	Claims           []contractx.Record `json:"claims"`
	ComplianceStatus ComplianceStatus   `json:"compliance_status"`
}

// PolicyDetails fetches the base policy (fatal when not found by either
// identifier) and attaches each requested section independently; a failed
// section defaults to empty.
func (s *Service) PolicyDetails(ctx context.Context, params PolicyDetailsParams) (*PolicyDetails, error) {
	policyID := strings.TrimSpace(params.PolicyID)
	policyNumber := strings.TrimSpace(params.PolicyNumber)
	if policyID == "" && policyNumber == "" {
		return nil, fmt.Errorf("policy_id or policy_number is required: %w", contractx.ErrValidation)
	}

	policy, err := s.fetchPolicy(ctx, policyID, policyNumber)
	if err != nil {
		return nil, err
	}
	if policyID == "" {
		policyID = policy.String("id")
	}

	details := &PolicyDetails{
		Policy:   policy,
		Coverage: []contractx.Record{},
		Billing:  []contractx.Record{},
		Claims:   []contractx.Record{},
		ComplianceStatus: ComplianceStatus{
			Compliant: true,
			Issues:    []string{},
			CheckedAt: s.now().UTC(),
		},
	}

	sectionParams := contractx.Params{"policy_id": policyID, "limit": defaultSectionLimit}
	if params.IncludeCoverage {
		details.Coverage = s.section(ctx, s.ams, "/v1/coverages", sectionParams)
	}
	if params.IncludeBilling {
		details.Billing = s.section(ctx, s.ams, "/v1/invoices", sectionParams)
	}
	if params.IncludeClaims {
		details.Claims = s.section(ctx, s.ams, "/v1/claims", sectionParams)
	}

	return details, nil
}

func (s *Service) fetchPolicy(ctx context.Context, policyID, policyNumber string) (contractx.Record, error) {
	if policyID != "" {
		res, err := s.ams.Get(ctx, "/v1/policies/"+url.PathEscape(policyID), nil)
		if err != nil {
			return nil, err
		}
		if policy := res.One(); policy != nil {
			return policy, nil
		}
		return nil, fmt.Errorf("policy %s not found: %w", policyID, contractx.ErrUpstream)
	}

	res, err := s.ams.Get(ctx, "/v1/policies", contractx.Params{
		"policy_number": policyNumber,
		"limit":         1,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("policy number %s not found: %w", policyNumber, contractx.ErrUpstream)
	}
	return res.Data[0], nil
}
