package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"+15550100001", "15550100001", "+44 20 7946 0958", "(555) 010-0001"}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), "expected %q to be valid", phone)
	}

	invalid := []string{"", "abc", "+", "0123", "+1555010000112345678"}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), "expected %q to be invalid", phone)
	}
}

func TestValidateSKU(t *testing.T) {
	valid := []string{"NK-22K-001", "ab", "RING_01", "0X"}
	for _, sku := range valid {
		assert.True(t, ValidateSKU(sku), "expected %q to be valid", sku)
	}

	invalid := []string{"", "a", "-leading", "has space", "way-too-long-sku-aaaaaaaaaaaaaaaaaaaaaaaa"}
	for _, sku := range invalid {
		assert.False(t, ValidateSKU(sku), "expected %q to be invalid", sku)
	}
}
