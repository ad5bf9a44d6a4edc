package client

import (
	"fmt"
	"strings"

	"dusthunter/internal/domain/entity"

	"google.golang.org/genai"
)

const systemInstruction = `You are Dusthunter Protocol, a cryptographic surveillance engine.
You ground every figure with the Google Search tool on public block explorers.
You answer with a single JSON object and nothing else.`

func analysisPrompt(address string, chain entity.Chain) string {
	return fmt.Sprintf(`Target: %s address %s.

Use the Google Search tool to find the LATEST balance and transaction data.
Query public explorers (Etherscan, Solscan, Polygonscan, mempool.space) to get:
1. Current native balance.
2. Top token holdings.
3. Total USD valuation.
4. Recent dusting attacks or zero-transfer poisoning attempts.
5. Any associated phishing links in recent transaction history.

If the wallet is a cold wallet with no history, report a 0 balance but note the safety status.

Return JSON with the fields: address, safetyScore (0-100), threatLevel (%s), summary,
activeWatchers, lastAttackAttempt (string or null), suspiciousApprovals, totalUsdValue (number),
holdings[{name, symbol, balance, usdValue, change24h, category (NATIVE|STABLE|ALT|NFT|LP), riskScore}],
approvals[{tokenName, tokenSymbol, allowance, lastUpdated, contractAddress, riskReason, isVerified, riskLevel}],
events[{id, timestamp, type (%s), severity, description, txHash, from, to, amount, token, attackSignature}].`,
		chain, address, joinLabels(entity.ThreatLevels), joinLabels(entity.EventTypes))
}

func joinLabels[T ~string](labels []T) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, "|")
}

func stringSchema() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
func numberSchema() *genai.Schema { return &genai.Schema{Type: genai.TypeNumber} }

func enumSchema[T ~string](values []T) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeString, Format: "enum"}
	for _, v := range values {
		s.Enum = append(s.Enum, string(v))
	}
	return s
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"address":             stringSchema(),
		"safetyScore":         numberSchema(),
		"threatLevel":         enumSchema(entity.ThreatLevels),
		"summary":             stringSchema(),
		"activeWatchers":      numberSchema(),
		"lastAttackAttempt":   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"suspiciousApprovals": numberSchema(),
		"totalUsdValue":       numberSchema(),
		"holdings": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":      stringSchema(),
					"symbol":    stringSchema(),
					"balance":   stringSchema(),
					"usdValue":  numberSchema(),
					"change24h": numberSchema(),
					"category": enumSchema([]entity.Category{
						entity.CategoryNative, entity.CategoryStable, entity.CategoryAlt, entity.CategoryNFT, entity.CategoryLP,
					}),
					"riskScore": numberSchema(),
				},
				Required: []string{"name", "symbol", "balance", "usdValue", "category", "riskScore"},
			},
		},
		"approvals": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"tokenName":       stringSchema(),
					"tokenSymbol":     stringSchema(),
					"allowance":       stringSchema(),
					"lastUpdated":     stringSchema(),
					"contractAddress": stringSchema(),
					"riskReason":      stringSchema(),
					"isVerified":      {Type: genai.TypeBoolean},
					"riskLevel":       enumSchema(entity.ThreatLevels),
				},
				Required: []string{"tokenName", "tokenSymbol", "allowance", "lastUpdated", "riskReason", "isVerified", "riskLevel"},
			},
		},
		"events": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":              stringSchema(),
					"timestamp":       stringSchema(),
					"type":            enumSchema(entity.EventTypes),
					"severity":        enumSchema(entity.ThreatLevels),
					"description":     stringSchema(),
					"txHash":          stringSchema(),
					"from":            stringSchema(),
					"to":              stringSchema(),
					"amount":          stringSchema(),
					"token":           stringSchema(),
					"attackSignature": stringSchema(),
				},
				Required: []string{"id", "timestamp", "type", "severity", "description"},
			},
		},
	},
	Required: []string{"address", "safetyScore", "threatLevel", "summary", "activeWatchers", "events", "approvals", "holdings", "totalUsdValue"},
}
