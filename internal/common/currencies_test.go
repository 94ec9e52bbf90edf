package common

import (
	"os"
	"path/filepath"
	"testing"

	"bank-ledger-go/internal/models"
)

func writeCurrenciesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "currencies.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write currencies file: %v", err)
	}
	return path
}

func TestLoadCurrencyConfig(t *testing.T) {
	path := writeCurrenciesFile(t, `
currencies:
  - code: PLN
  - code: EUR
  - code: USD
`)

	currencies, err := LoadCurrencyConfig(path)
	if err != nil {
		t.Fatalf("LoadCurrencyConfig failed: %v", err)
	}

	expected := []models.Currency{"PLN", "EUR", "USD"}
	if len(currencies) != len(expected) {
		t.Fatalf("Expected %d currencies, got %d", len(expected), len(currencies))
	}
	for i, c := range expected {
		if currencies[i] != c {
			t.Errorf("Expected currency %s at index %d, got %s", c, i, currencies[i])
		}
	}
}

func TestLoadCurrencyConfig_MissingCode(t *testing.T) {
	path := writeCurrenciesFile(t, `
currencies:
  - code: PLN
  - code: ""
`)

	if _, err := LoadCurrencyConfig(path); err == nil {
		t.Fatalf("Expected error for currency without code, got nil")
	}
}

func TestLoadCurrencyConfig_Empty(t *testing.T) {
	path := writeCurrenciesFile(t, "currencies: []\n")

	if _, err := LoadCurrencyConfig(path); err == nil {
		t.Fatalf("Expected error for empty currency list, got nil")
	}
}

func TestLoadCurrencyConfig_MissingFile(t *testing.T) {
	if _, err := LoadCurrencyConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("Expected error for missing file, got nil")
	}
}
