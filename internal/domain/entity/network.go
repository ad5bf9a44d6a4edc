package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Chain is one of the blockchains an address can be analyzed on.
type Chain string

const (
	ChainEthereum Chain = "Ethereum"
	ChainSolana   Chain = "Solana"
	ChainBitcoin  Chain = "Bitcoin"
	ChainPolygon  Chain = "Polygon"
)

// Chains lists the supported chains in display order.
var Chains = []Chain{ChainEthereum, ChainSolana, ChainBitcoin, ChainPolygon}

var (
	ErrInvalidChain   = errors.New("unsupported chain")
	ErrInvalidAddress = errors.New("invalid address")
)

// ParseChain matches s case-insensitively against the supported chains.
func ParseChain(s string) (Chain, error) {
	s = strings.TrimSpace(s)
	for _, c := range Chains {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChain, s)
}

// IsValid reports whether c is one of the supported chains.
func (c Chain) IsValid() bool {
	for _, known := range Chains {
		if c == known {
			return true
		}
	}
	return false
}

// ValidateAddress performs a shape check of addr for the chain. It does not
// touch the network.
func (c Chain) ValidateAddress(addr string) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	switch c {
	case ChainEthereum, ChainPolygon:
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%w: %q is not a hex address for %s", ErrInvalidAddress, addr, c)
		}
	case ChainSolana:
		key, err := base58.Decode(addr)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("%w: %q is not a base58 public key", ErrInvalidAddress, addr)
		}
	case ChainBitcoin:
		lower := strings.ToLower(addr)
		if !(strings.HasPrefix(addr, "1") || strings.HasPrefix(addr, "3") || strings.HasPrefix(lower, "bc1")) ||
			len(addr) < 26 || len(addr) > 90 {
			return fmt.Errorf("%w: %q is not a bitcoin address", ErrInvalidAddress, addr)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChain, string(c))
	}
	return nil
}
