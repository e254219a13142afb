package domain

import (
	"fmt"
	"math"
)

const (
	kevAmplifier = 0.5
	pocAmplifier = 0.5

	// DefaultHighRiskThreshold is the risk score above which a record is high risk
	DefaultHighRiskThreshold = 12.0
	criticalCVSS             = 9.0
	exploitableCVSS          = 7.0
)

// CalculateRiskScore amplifies the CVSS base score by exploitation signals.
// A record without a CVSS score stays at 0 whatever its flags.
func CalculateRiskScore(v Vulnerability) float64 {
	multiplier := 1 + v.EPSSScore.Float()
	if v.IsKEV {
		multiplier += kevAmplifier
	}
	if v.HasPoC {
		multiplier += pocAmplifier
	}
	return round2(v.CVSSScore.Float() * multiplier)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// HighRiskRule decides whether a vulnerability is high risk.
// Two rules exist: the score rule is the canonical one, the exploitable rule is
// the stricter dashboard filter kept for compatibility.
type HighRiskRule interface {
	Name() string
	IsHighRisk(v Vulnerability) bool
}

// ScoreRule flags records whose risk score exceeds Threshold or whose CVSS is critical
type ScoreRule struct {
	Threshold float64
}

func (r ScoreRule) Name() string {
	return "score"
}

func (r ScoreRule) IsHighRisk(v Vulnerability) bool {
	return CalculateRiskScore(v) > r.Threshold || v.CVSSScore.Float() >= criticalCVSS
}

// ExploitableRule flags critical records and high records that are known exploited or have a PoC
type ExploitableRule struct{}

func (r ExploitableRule) Name() string {
	return "exploitable"
}

func (r ExploitableRule) IsHighRisk(v Vulnerability) bool {
	cvss := v.CVSSScore.Float()
	return cvss >= criticalCVSS || (v.IsKEV && cvss >= exploitableCVSS) || (v.HasPoC && cvss >= exploitableCVSS)
}

// IsHighRisk applies the canonical rule with the default threshold
func IsHighRisk(v Vulnerability) bool {
	return ScoreRule{Threshold: DefaultHighRiskThreshold}.IsHighRisk(v)
}

// HighRiskRuleByName resolves a configured rule name
func HighRiskRuleByName(name string, threshold float64) (HighRiskRule, error) {
	switch name {
	case "", "score":
		return ScoreRule{Threshold: threshold}, nil
	case "exploitable":
		return ExploitableRule{}, nil
	}
	return nil, fmt.Errorf("unknown high risk rule %q", name)
}
