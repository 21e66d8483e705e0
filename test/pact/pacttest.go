//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "storefront-api"
	ConsumerName = "storefront-web"

	StateCatalogBaseline = "catalog has the backpack and the plush"
	StateProductMissing  = "no product with id p-missing"
	StateShopperSignedIn = "shopper pact@example.com is registered"
)

const (
	ExistingProductID = "p-backpack"
	MissingProductID  = "p-missing"
	ExistingPrice     = "79.99"

	ShopperEmail    = "pact@example.com"
	ShopperPassword = "pact-pass"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleProductPayload is the product the catalog baseline state guarantees.
func ExampleProductPayload() map[string]any {
	return map[string]any{
		"id":       ExistingProductID,
		"slug":     "black-roll-top-backpack",
		"title":    "Black Roll-Top Backpack",
		"category": "Bags",
		"price":    79.99,
	}
}

// ExampleLoginPayload is the credential pair of the signed-in state.
func ExampleLoginPayload() map[string]any {
	return map[string]any{
		"email":    ShopperEmail,
		"password": ShopperPassword,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
