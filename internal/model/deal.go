package model

// AATRow is one row of the AAT valuation extract for a reporting date.
// IRR and Duration are pointers because the extract regularly ships deals
// whose model run failed; a missing value is not zero.
type AATRow struct {
	DealName         string   `json:"dealName"`
	PortfolioManager string   `json:"portfolioManager"`
	IRR              *float64 `json:"irr"`
	Duration         *float64 `json:"duration"`
}

// ECFRow is one row of the ECF valuation extract. PrevIRR is the prior
// reporting period's IRR, used for month-over-month movement detection.
type ECFRow struct {
	DealName string   `json:"dealName"`
	IRR      *float64 `json:"irr"`
	PrevIRR  *float64 `json:"prevIrr"`
	Duration *float64 `json:"duration"`
}

// MVRow is one row of the market-value extract. A row with a non-empty
// Instrument is a component row; only rows with an empty Instrument carry
// the deal-level aggregate and participate in reconciliation.
type MVRow struct {
	DealName    string   `json:"dealName"`
	Instrument  string   `json:"instrument"`
	MarketValue *float64 `json:"marketValue"`
	LiqCap      *float64 `json:"liqCap"`
}

// IsDealLevel reports whether the row carries the deal-level aggregate.
func (r MVRow) IsDealLevel() bool {
	return r.Instrument == ""
}

// Category classifies a reconciled deal by which metrics disagree beyond
// tolerance on a significant market value.
type Category string

const (
	CategoryInsignificant       Category = "insignificant"
	CategorySignificantIRR      Category = "significant-irr"
	CategorySignificantDuration Category = "significant-duration"
	CategorySignificantBoth     Category = "significant-both"
	CategoryUnmatched           Category = "unmatched"
)

// ReconciledDeal is the joined view of one deal across the AAT, ECF and MV
// sources for a single reporting date.
//
// All metric fields are nil when the contributing side is absent. Diffs are
// signed (AAT minus ECF) and nil whenever either operand is nil, so a deal
// missing on one side never looks like a zero-discrepancy deal.
type ReconciledDeal struct {
	Key              string   `json:"key"`
	DealName         string   `json:"dealName"`
	PortfolioManager string   `json:"portfolioManager"`
	PMOwner          string   `json:"pmOwner"`
	AATIRR           *float64 `json:"aatIrr"`
	ECFIRR           *float64 `json:"ecfIrr"`
	PrevECFIRR       *float64 `json:"prevEcfIrr"`
	AATDuration      *float64 `json:"aatDuration"`
	ECFDuration      *float64 `json:"ecfDuration"`
	MarketValue      *float64 `json:"marketValue"`
	LiqCap           *float64 `json:"liqCap"`

	IRRDiff      *float64 `json:"irrDiff"`
	DurationDiff *float64 `json:"durationDiff"`
	ECFIRRChange *float64 `json:"ecfIrrChange"`

	MVPercent           *float64 `json:"mvPercent"`
	CumulativeMVPercent *float64 `json:"cumulativeMvPercent"`

	InAAT bool `json:"inAat"`
	InECF bool `json:"inEcf"`

	Category Category `json:"category"`

	// Highlight flags, set by categorization. Highlight-set membership is
	// read from these flags so the sets cannot drift from the category.
	FlagIRR      bool `json:"flagIrr"`
	FlagDuration bool `json:"flagDuration"`
	FlagMover    bool `json:"flagMover"`
}

// Matched reports whether the deal was found in both valuation sources.
func (d *ReconciledDeal) Matched() bool {
	return d.InAAT && d.InECF
}

// LargeDealRow is one row of the large-deal summary: the fixed column subset
// of a reconciled deal plus its share of the surviving population's total
// liquidation capacity and its top-N rank flag.
type LargeDealRow struct {
	Key              string   `json:"key"`
	DealName         string   `json:"dealName"`
	PortfolioManager string   `json:"portfolioManager"`
	AATIRR           *float64 `json:"aatIrr"`
	ECFIRR           *float64 `json:"ecfIrr"`
	IRRDiff          *float64 `json:"irrDiff"`
	AATDuration      *float64 `json:"aatDuration"`
	ECFDuration      *float64 `json:"ecfDuration"`
	DurationDiff     *float64 `json:"durationDiff"`
	LiqCap           *float64 `json:"liqCap"`
	PctLC            *float64 `json:"pctLc"`
	TopRanked        bool     `json:"isTop10"`
	Category         Category `json:"category"`
}

// MissingAATEntry lists a deal whose AAT side lacks IRR or duration data,
// together with which fields are missing.
type MissingAATEntry struct {
	Key              string   `json:"key"`
	DealName         string   `json:"dealName"`
	PortfolioManager string   `json:"portfolioManager"`
	PMOwner          string   `json:"pmOwner"`
	AATIRR           *float64 `json:"aatIrr"`
	AATDuration      *float64 `json:"aatDuration"`
	LiqCap           *float64 `json:"liqCap"`
	MarketValue      *float64 `json:"marketValue"`
	MissingFields    []string `json:"missingFields"`
}
