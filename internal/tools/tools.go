package tools

import (
	"encoding/json"
	"os"
	"runtime/debug"
	"strings"

	"github.com/aquilax/truncate"
	"github.com/kubescape/vulnintel/core/domain"
)

func PackageVersion(name string) string {
	bi, ok := debug.ReadBuildInfo()
	if ok {
		for _, dep := range bi.Deps {
			if dep.Path == name {
				return dep.Version
			}
		}
	}
	return "unknown"
}

// Ellipsis flattens s to a single line and cuts it to at most n runes, marking the cut with "..."
func Ellipsis(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 {
		return s
	}
	return truncate.Truncate(s, n, "...", truncate.PositionEnd)
}

func FileContent(path string) []byte {
	b, _ := os.ReadFile(path)
	return b
}

// FileToVulnerabilities loads a JSON list of normalized records, it panics on unreadable fixtures
func FileToVulnerabilities(path string) []domain.Vulnerability {
	var vulns []domain.Vulnerability
	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	err = json.Unmarshal(b, &vulns)
	if err != nil {
		panic(err)
	}
	return vulns
}
