package types

import (
	"fmt"
	"time"
)

// Outcome is the terminal state of a closed deal. Every deal in the
// repository carries one; there is no open/unknown state.
type Outcome string

const (
	OutcomeWon  Outcome = "Won"
	OutcomeLost Outcome = "Lost"
)

func (o Outcome) Valid() bool {
	return o == OutcomeWon || o == OutcomeLost
}

// Industry is the closed set of verticals the sales team sells into.
type Industry string

const (
	IndustrySaaS       Industry = "SaaS"
	IndustryEcommerce  Industry = "Ecommerce"
	IndustryEdTech     Industry = "EdTech"
	IndustryFinTech    Industry = "FinTech"
	IndustryHealthTech Industry = "HealthTech"
)

var Industries = []Industry{
	IndustrySaaS, IndustryEcommerce, IndustryEdTech, IndustryFinTech, IndustryHealthTech,
}

func (i Industry) Valid() bool {
	for _, v := range Industries {
		if i == v {
			return true
		}
	}
	return false
}

// Region is the closed set of sales territories.
type Region string

const (
	RegionNorthAmerica Region = "North America"
	RegionEurope       Region = "Europe"
	RegionAPAC         Region = "APAC"
	RegionLATAM        Region = "LATAM"
)

var Regions = []Region{RegionNorthAmerica, RegionEurope, RegionAPAC, RegionLATAM}

func (r Region) Valid() bool {
	for _, v := range Regions {
		if r == v {
			return true
		}
	}
	return false
}

// LeadSource is the closed set of channels a deal can originate from.
type LeadSource string

const (
	LeadInbound  LeadSource = "Inbound"
	LeadOutbound LeadSource = "Outbound"
	LeadPartner  LeadSource = "Partner"
	LeadReferral LeadSource = "Referral"
)

var LeadSources = []LeadSource{LeadInbound, LeadOutbound, LeadPartner, LeadReferral}

func (l LeadSource) Valid() bool {
	for _, v := range LeadSources {
		if l == v {
			return true
		}
	}
	return false
}

// ProductType is the closed set of product lines.
type ProductType string

const (
	ProductCore       ProductType = "Core"
	ProductPro        ProductType = "Pro"
	ProductEnterprise ProductType = "Enterprise"
)

var ProductTypes = []ProductType{ProductCore, ProductPro, ProductEnterprise}

func (p ProductType) Valid() bool {
	for _, v := range ProductTypes {
		if p == v {
			return true
		}
	}
	return false
}

// DealStage is the last pipeline stage a deal reached before close.
// The set is ordered from earliest to latest.
type DealStage string

const (
	StageDiscovery   DealStage = "Discovery"
	StageDemo        DealStage = "Demo"
	StageProposal    DealStage = "Proposal"
	StageNegotiation DealStage = "Negotiation"
)

var DealStages = []DealStage{StageDiscovery, StageDemo, StageProposal, StageNegotiation}

func (s DealStage) Valid() bool {
	for _, v := range DealStages {
		if s == v {
			return true
		}
	}
	return false
}

// CycleBucket is the discretized sales-cycle-length category, derived from
// a deal's cycle days by the analysis configuration.
type CycleBucket string

const (
	BucketFast     CycleBucket = "Fast (0-30d)"
	BucketMedium   CycleBucket = "Medium (30-60d)"
	BucketLong     CycleBucket = "Long (60-90d)"
	BucketVeryLong CycleBucket = "Very Long (90d+)"
)

var CycleBuckets = []CycleBucket{BucketFast, BucketMedium, BucketLong, BucketVeryLong}

// RepCount is the number of known sales rep identifiers (rep_1 .. rep_25).
const RepCount = 25

// ValidRep reports whether id is one of the known rep identifiers.
func ValidRep(id string) bool {
	for i := 1; i <= RepCount; i++ {
		if id == fmt.Sprintf("rep_%d", i) {
			return true
		}
	}
	return false
}

// Deal is a closed historical sales record. Immutable once loaded; the
// upstream repository guarantees all fields are populated and the outcome
// is terminal. Ingestion and null handling are the collaborator's problem,
// not ours.
type Deal struct {
	ID          string      `json:"deal_id"`
	Amount      float64     `json:"deal_amount"`
	CycleDays   int         `json:"sales_cycle_days"`
	Industry    Industry    `json:"industry"`
	Region      Region      `json:"region"`
	LeadSource  LeadSource  `json:"lead_source"`
	ProductType ProductType `json:"product_type"`
	RepID       string      `json:"sales_rep_id"`
	Stage       DealStage   `json:"deal_stage"`
	Outcome     Outcome     `json:"outcome"`
	CloseDate   time.Time   `json:"closed_date"`
}

// Won reports whether the deal closed won.
func (d Deal) Won() bool { return d.Outcome == OutcomeWon }

// Quarter returns the close-date quarter in "2024Q3" form. Used only for
// trend aggregates.
func (d Deal) Quarter() string {
	q := (int(d.CloseDate.Month())-1)/3 + 1
	return fmt.Sprintf("%dQ%d", d.CloseDate.Year(), q)
}

// Velocity is deal amount per cycle day, a derived pacing metric carried
// on scored output. Zero-day cycles report the full amount.
func (d Deal) Velocity() float64 {
	if d.CycleDays <= 0 {
		return d.Amount
	}
	return d.Amount / float64(d.CycleDays)
}

// Validate checks the closed-set fields. The analysis core trusts its
// input, but the HTTP surface rejects malformed batches up front.
func (d Deal) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("deal has no identifier")
	case d.Amount <= 0:
		return fmt.Errorf("deal %s: amount must be positive, got %v", d.ID, d.Amount)
	case d.CycleDays < 0:
		return fmt.Errorf("deal %s: negative sales cycle %d", d.ID, d.CycleDays)
	case !d.Industry.Valid():
		return fmt.Errorf("deal %s: unknown industry %q", d.ID, d.Industry)
	case !d.Region.Valid():
		return fmt.Errorf("deal %s: unknown region %q", d.ID, d.Region)
	case !d.LeadSource.Valid():
		return fmt.Errorf("deal %s: unknown lead source %q", d.ID, d.LeadSource)
	case !d.ProductType.Valid():
		return fmt.Errorf("deal %s: unknown product type %q", d.ID, d.ProductType)
	case !ValidRep(d.RepID):
		return fmt.Errorf("deal %s: unknown rep %q", d.ID, d.RepID)
	case !d.Stage.Valid():
		return fmt.Errorf("deal %s: unknown deal stage %q", d.ID, d.Stage)
	case !d.Outcome.Valid():
		return fmt.Errorf("deal %s: outcome must be Won or Lost, got %q", d.ID, d.Outcome)
	case d.CloseDate.IsZero():
		return fmt.Errorf("deal %s: missing close date", d.ID)
	}
	return nil
}

// AnalyzeRequest is the request body for the analyze endpoint: a batch of
// closed deals supplied by the upstream deal repository.
type AnalyzeRequest struct {
	Deals []Deal `json:"deals" binding:"required"`
}
