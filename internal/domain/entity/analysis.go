package entity

// ThreatLevel is the severity label used across the analysis.
type ThreatLevel string

const (
	ThreatLow      ThreatLevel = "LOW"
	ThreatMedium   ThreatLevel = "MEDIUM"
	ThreatHigh     ThreatLevel = "HIGH"
	ThreatCritical ThreatLevel = "CRITICAL"
)

// ThreatLevels lists the accepted labels, lowest first.
var ThreatLevels = []ThreatLevel{ThreatLow, ThreatMedium, ThreatHigh, ThreatCritical}

// EventType tags a security event.
type EventType string

const (
	EventDusting     EventType = "DUSTING"
	EventApproval    EventType = "APPROVAL"
	EventPhishing    EventType = "PHISHING"
	EventWatcher     EventType = "WATCHER"
	EventUnknown     EventType = "UNKNOWN"
	EventTransfer    EventType = "TRANSFER"
	EventSwap        EventType = "SWAP"
	EventExploitLink EventType = "EXPLOIT_LINK"
	EventPoisoning   EventType = "POISONING"
)

// EventTypes lists every accepted event tag.
var EventTypes = []EventType{
	EventDusting, EventApproval, EventPhishing, EventWatcher, EventUnknown,
	EventTransfer, EventSwap, EventExploitLink, EventPoisoning,
}

// SecurityEvent is one entry of the wallet's activity timeline.
type SecurityEvent struct {
	ID              string      `json:"id"`
	Timestamp       string      `json:"timestamp"`
	Type            EventType   `json:"type"`
	Severity        ThreatLevel `json:"severity"`
	Description     string      `json:"description"`
	TxHash          string      `json:"txHash,omitempty"`
	From            string      `json:"from,omitempty"`
	To              string      `json:"to,omitempty"`
	Amount          string      `json:"amount,omitempty"`
	Token           string      `json:"token,omitempty"`
	AttackSignature string      `json:"attackSignature,omitempty"` // e.g. "Zero-Transfer Poison"
}

// TokenApproval is an allowance granted by the wallet.
type TokenApproval struct {
	TokenName       string      `json:"tokenName"`
	TokenSymbol     string      `json:"tokenSymbol"`
	Allowance       string      `json:"allowance"`
	LastUpdated     string      `json:"lastUpdated"`
	ContractAddress string      `json:"contractAddress"`
	RiskReason      string      `json:"riskReason"`
	IsVerified      bool        `json:"isVerified"`
	RiskLevel       ThreatLevel `json:"riskLevel"`
}

// GroundingSource is a web page the analysis was grounded on.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// AttackVector is an optional projected attack path.
type AttackVector struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Likelihood  int    `json:"likelihood"` // 0-100
	OriginGeo   string `json:"originGeo,omitempty"`
}

// WalletAnalysis is the structured result of one analysis uplink.
type WalletAnalysis struct {
	Address             string            `json:"address"`
	SafetyScore         int               `json:"safetyScore"`
	ThreatLevel         ThreatLevel       `json:"threatLevel"`
	Summary             string            `json:"summary"`
	ActiveWatchers      int               `json:"activeWatchers"`
	LastAttackAttempt   *string           `json:"lastAttackAttempt"`
	SuspiciousApprovals int               `json:"suspiciousApprovals"`
	TotalUSDValue       float64           `json:"totalUsdValue"`
	Approvals           []TokenApproval   `json:"approvals"`
	Events              []SecurityEvent   `json:"events"`
	Holdings            []Holding         `json:"holdings"`
	AttackVectors       []AttackVector    `json:"attackVectors,omitempty"`
	Sources             []GroundingSource `json:"sources,omitempty"`
}

// Normalize clamps scores into range and fills labels the model left empty
// or invented, so downstream consumers only see the enumerated values.
func (a *WalletAnalysis) Normalize() {
	a.SafetyScore = clamp(a.SafetyScore, 0, 100)
	if !a.ThreatLevel.IsValid() {
		a.ThreatLevel = ThreatLevelForScore(a.SafetyScore)
	}
	if a.ActiveWatchers < 0 {
		a.ActiveWatchers = 0
	}
	if a.SuspiciousApprovals < 0 {
		a.SuspiciousApprovals = 0
	}
	if a.LastAttackAttempt != nil && *a.LastAttackAttempt == "" {
		a.LastAttackAttempt = nil
	}
	for i := range a.Holdings {
		h := &a.Holdings[i]
		h.RiskScore = clamp(h.RiskScore, 0, 100)
		if !h.Category.IsValid() {
			h.Category = CategoryAlt
		}
	}
	for i := range a.Approvals {
		if !a.Approvals[i].RiskLevel.IsValid() {
			a.Approvals[i].RiskLevel = ThreatMedium
		}
	}
	for i := range a.Events {
		e := &a.Events[i]
		if !e.Type.IsValid() {
			e.Type = EventUnknown
		}
		if !e.Severity.IsValid() {
			e.Severity = ThreatLow
		}
	}
	if a.Approvals == nil {
		a.Approvals = []TokenApproval{}
	}
	if a.Events == nil {
		a.Events = []SecurityEvent{}
	}
	if a.Holdings == nil {
		a.Holdings = []Holding{}
	}
}

// IsValid reports whether l is one of the enumerated labels.
func (l ThreatLevel) IsValid() bool {
	for _, known := range ThreatLevels {
		if l == known {
			return true
		}
	}
	return false
}

// IsValid reports whether t is one of the enumerated event tags.
func (t EventType) IsValid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ThreatLevelForScore maps a safety score to a label.
func ThreatLevelForScore(score int) ThreatLevel {
	switch {
	case score >= 75:
		return ThreatLow
	case score >= 50:
		return ThreatMedium
	case score >= 25:
		return ThreatHigh
	default:
		return ThreatCritical
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
