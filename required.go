package dnscheck

// Purpose identifies which mail-sending function a required record serves.
type Purpose string

const (
	// PurposeMXSPF is the sending-subdomain alias providing MX and SPF.
	PurposeMXSPF Purpose = "mx-spf"

	// PurposeDKIM is the DKIM key alias.
	PurposeDKIM Purpose = "dkim"

	// PurposeDMARC is the platform DMARC policy record.
	PurposeDMARC Purpose = "dmarc"
)

// DNS record types handled by the provisioner.
const (
	TypeCNAME = "CNAME"
	TypeTXT   = "TXT"
)

// RequiredRecord is one DNS record the platform needs for a domain.
type RequiredRecord struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Value   string  `json:"value"`
	Purpose Purpose `json:"purpose"`
}

// RequiredRecords computes the three records the target configuration
// needs for domain, in provisioning order. Pure; performs no I/O.
func RequiredRecords(t Target, domain string) []RequiredRecord {
	return []RequiredRecord{
		{
			Type:    TypeCNAME,
			Name:    t.SendingName(domain),
			Value:   t.CNAMETarget,
			Purpose: PurposeMXSPF,
		},
		{
			Type:    TypeCNAME,
			Name:    t.DKIMName(domain),
			Value:   t.DKIMTarget,
			Purpose: PurposeDKIM,
		},
		{
			Type:    TypeTXT,
			Name:    t.DMARCProvisionName(domain),
			Value:   t.DMARCPolicy,
			Purpose: PurposeDMARC,
		},
	}
}

// UnmetRecords filters the required set for result.Domain down to the
// records whose purpose the check result does not yet satisfy. The mx-spf
// record is satisfied only when both the MX and the SPF check pass.
func UnmetRecords(t Target, result *CheckResult) []RequiredRecord {
	var unmet []RequiredRecord
	for _, rec := range RequiredRecords(t, result.Domain) {
		if !purposeSatisfied(rec.Purpose, result) {
			unmet = append(unmet, rec)
		}
	}
	return unmet
}

func purposeSatisfied(p Purpose, result *CheckResult) bool {
	switch p {
	case PurposeMXSPF:
		return result.Checks.MX.Status == StatusPass && result.Checks.SPF.Status == StatusPass
	case PurposeDKIM:
		return result.Checks.DKIM.Status == StatusPass
	case PurposeDMARC:
		return result.Checks.DMARC.Status == StatusPass
	}
	return false
}
