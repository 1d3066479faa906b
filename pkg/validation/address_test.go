package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.NoError(t, ValidateAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))

	assert.Error(t, ValidateAddress(""))
	assert.Error(t, ValidateAddress("0x123"))
	assert.Error(t, ValidateAddress("not-an-address"))
	assert.Error(t, ValidateAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaeZ"))
}

func TestCanonicalAddress(t *testing.T) {
	canonical, err := CanonicalAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", canonical)

	_, err = CanonicalAddress("junk")
	assert.Error(t, err)
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress(
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	))
	assert.False(t, SameAddress(
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	))
}
