//go:build tools

// Package tools pins the development toolchain in go.mod so every
// checkout lints, generates, and tests with the same versions.
// Install with: go install -tags tools ./...
package tools

import (
	// Lint and formatting
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "golang.org/x/tools/cmd/goimports"

	// Mock generation for the interfaces package seams
	_ "github.com/golang/mock/mockgen"

	// Test runners
	_ "github.com/onsi/ginkgo/v2/ginkgo"
	_ "gotest.tools/gotestsum"

	// Security scanning
	_ "github.com/securego/gosec/v2/cmd/gosec"

	// Profiling
	_ "github.com/google/pprof"

	// Doc generation
	_ "github.com/swaggo/swag/cmd/swag"
)
