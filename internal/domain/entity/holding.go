package entity

// Category classifies a holding.
type Category string

const (
	CategoryNative Category = "NATIVE"
	CategoryStable Category = "STABLE"
	CategoryAlt    Category = "ALT"
	CategoryNFT    Category = "NFT"
	CategoryLP     Category = "LP"
)

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryNative, CategoryStable, CategoryAlt, CategoryNFT, CategoryLP:
		return true
	}
	return false
}

// Holding represents one token position in a wallet. USDValue and Change24h
// are derived: they carry the analysis estimate until a live price exists.
type Holding struct {
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Balance   Balance  `json:"balance"`
	USDValue  float64  `json:"usdValue"`
	Change24h float64  `json:"change24h"`
	Category  Category `json:"category"`
	RiskScore int      `json:"riskScore"` // 0-100, higher is safer
}

// Ref returns the price lookup reference for the holding.
func (h Holding) Ref() TokenRef {
	return TokenRef{Symbol: h.Symbol, Name: h.Name}
}
