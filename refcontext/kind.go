package refcontext

// Kind is the semantic category of an identifier field. Each hosting
// service declares the fixed subset of kinds relevant to it when it
// constructs its Context.
type Kind string

// Identifier kinds used across the surveillance services.
const (
	KindEntityID      Kind = "entity_id"
	KindCompanySymbol Kind = "company_symbol"
	KindCaseID        Kind = "case_id"
	KindUPSIID        Kind = "upsi_id"
	KindAccountID     Kind = "account_id"
	KindSymbol        Kind = "symbol"
	KindReportID      Kind = "report_id"
)

// Tier identifies which resolution tier produced a value. Tiers are
// checked in a fixed order and never merged or scored.
type Tier int

const (
	// TierLastSeen means the value came from the last-seen index.
	TierLastSeen Tier = iota
	// TierField means a history record's field contained the partial.
	TierField
	// TierPrompt means a history record's prompt contained the partial.
	TierPrompt
	// TierConsistent means the value was drawn from the single history
	// record matched by a cross-field resolution.
	TierConsistent
	// TierPassthrough means nothing matched and the partial was returned
	// unchanged.
	TierPassthrough
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierLastSeen:
		return "last_seen"
	case TierField:
		return "field"
	case TierPrompt:
		return "prompt"
	case TierConsistent:
		return "consistent"
	case TierPassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}
