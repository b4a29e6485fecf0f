package analysis

import "github.com/ZanzyTHEbar/pipeline-insight/internal/types"

// Attribute names a categorical deal dimension. The same type covers the
// driver-analysis candidates and the five rate-table dimensions used by the
// scorer.
type Attribute string

const (
	AttrIndustry    Attribute = "industry"
	AttrRegion      Attribute = "region"
	AttrProductType Attribute = "product_type"
	AttrLeadSource  Attribute = "lead_source"
	AttrDealStage   Attribute = "deal_stage"
	AttrCycleBucket Attribute = "cycle_bucket"
	AttrRep         Attribute = "rep"
)

// DriverAttributes are the candidates tested for association with outcome.
// Numeric attributes appear only through their bucketed form.
var DriverAttributes = []Attribute{
	AttrIndustry,
	AttrRegion,
	AttrProductType,
	AttrLeadSource,
	AttrDealStage,
	AttrCycleBucket,
}

// RateAttributes are the five dimensions the risk scorer looks up.
var RateAttributes = []Attribute{
	AttrRep,
	AttrIndustry,
	AttrLeadSource,
	AttrDealStage,
	AttrCycleBucket,
}

// Value extracts a deal's categorical value for an attribute. Cycle bucket
// is derived on the fly from the configured boundaries so the raw deal
// record never carries it.
func (c Config) Value(d types.Deal, attr Attribute) string {
	switch attr {
	case AttrIndustry:
		return string(d.Industry)
	case AttrRegion:
		return string(d.Region)
	case AttrProductType:
		return string(d.ProductType)
	case AttrLeadSource:
		return string(d.LeadSource)
	case AttrDealStage:
		return string(d.Stage)
	case AttrCycleBucket:
		return string(c.Bucket(d.CycleDays))
	case AttrRep:
		return d.RepID
	}
	return ""
}
