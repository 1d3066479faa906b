package validation

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidateAddress validates an EVM wallet address format (0x + 40 hex chars).
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if !common.IsHexAddress(strings.TrimSpace(addr)) {
		return fmt.Errorf("invalid address: %q", addr)
	}
	return nil
}

// CanonicalAddress validates an address and returns its EIP-55 checksummed
// form. All stores key wallets by this canonical form.
func CanonicalAddress(addr string) (string, error) {
	if err := ValidateAddress(addr); err != nil {
		return "", err
	}
	return common.HexToAddress(strings.TrimSpace(addr)).Hex(), nil
}

// NormalizeAddress lowercases an address for case-insensitive comparison,
// e.g. against the admin allow-list.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// SameAddress reports whether two addresses refer to the same account,
// ignoring checksum casing.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}
