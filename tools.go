//go:build tools

package tools

// mockery v2 (v2.53.5) is used as an installed binary (not via go run), so
// no import is needed. Run: mockery (from the repository root) to regenerate
// pkg/log/mocks from .mockery.yaml. The config uses v2 keys; v3 would need
// `mockery migrate` first.
