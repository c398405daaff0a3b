package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "00000000191", NormalizeCPF("000.000.001-91"))
	assert.Equal(t, "12345678909", NormalizeCPF("123 456 789 09"))
	assert.Equal(t, "", NormalizeCPF("abc"))
}

func TestValidCPF(t *testing.T) {
	valid := []string{
		"00000000191", // the classic test CPF
		"52998224725",
	}
	for _, cpf := range valid {
		assert.True(t, ValidCPF(cpf), cpf)
	}

	invalid := []string{
		"",
		"123",
		"11111111111", // repeated digits
		"52998224726", // wrong check digit
		"529982247250",
	}
	for _, cpf := range invalid {
		assert.False(t, ValidCPF(cpf), cpf)
	}
}
