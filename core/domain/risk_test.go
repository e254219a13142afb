package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRiskScore(t *testing.T) {
	tests := []struct {
		name string
		v    Vulnerability
		want float64
	}{
		{
			name: "kev and epss amplify cvss",
			v:    Vulnerability{CVSSScore: Float64(9.5), IsKEV: true, EPSSScore: Float64(0.3)},
			want: 17.1,
		},
		{
			name: "no cvss stays at zero",
			v:    Vulnerability{IsKEV: true, HasPoC: true, EPSSScore: Float64(1)},
			want: 0,
		},
		{
			name: "all signals",
			v:    Vulnerability{CVSSScore: Float64(10), IsKEV: true, HasPoC: true, EPSSScore: Float64(1)},
			want: 30,
		},
		{
			name: "base score only",
			v:    Vulnerability{CVSSScore: Float64(5.5)},
			want: 5.5,
		},
		{
			name: "rounded to two decimals",
			v:    Vulnerability{CVSSScore: Float64(7.3), EPSSScore: Float64(0.123)},
			want: 8.2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateRiskScore(tt.v))
		})
	}
}

func TestCalculateRiskScore_Monotonic(t *testing.T) {
	scores := []float64{0, 1, 3.3, 4, 6.9, 7, 8.8, 9, 10}
	epss := []float64{0, 0.01, 0.2, 0.5, 0.99, 1}
	flags := []bool{false, true}
	for _, kev := range flags {
		for _, poc := range flags {
			for _, e := range epss {
				prev := -1.0
				for _, s := range scores {
					got := CalculateRiskScore(Vulnerability{CVSSScore: Float64(s), EPSSScore: Float64(e), IsKEV: kev, HasPoC: poc})
					assert.GreaterOrEqual(t, got, prev, "cvss %v", s)
					prev = got
				}
			}
			for _, s := range scores {
				prev := -1.0
				for _, e := range epss {
					got := CalculateRiskScore(Vulnerability{CVSSScore: Float64(s), EPSSScore: Float64(e), IsKEV: kev, HasPoC: poc})
					assert.GreaterOrEqual(t, got, prev, "epss %v", e)
					prev = got
				}
			}
		}
	}
	for _, s := range scores {
		base := Vulnerability{CVSSScore: Float64(s), EPSSScore: Float64(0.4)}
		withKEV, withPoC := base, base
		withKEV.IsKEV = true
		withPoC.HasPoC = true
		assert.GreaterOrEqual(t, CalculateRiskScore(withKEV), CalculateRiskScore(base))
		assert.GreaterOrEqual(t, CalculateRiskScore(withPoC), CalculateRiskScore(base))
	}
}

func TestHighRiskRules(t *testing.T) {
	tests := []struct {
		name            string
		v               Vulnerability
		wantScore       bool
		wantExploitable bool
	}{
		{
			name:            "critical cvss",
			v:               Vulnerability{CVSSScore: Float64(9)},
			wantScore:       true,
			wantExploitable: true,
		},
		{
			name:            "high with kev and poc exceeds threshold",
			v:               Vulnerability{CVSSScore: Float64(7.5), IsKEV: true, HasPoC: true},
			wantScore:       true,
			wantExploitable: true,
		},
		{
			name:            "high with kev only",
			v:               Vulnerability{CVSSScore: Float64(7), IsKEV: true},
			wantScore:       false,
			wantExploitable: true,
		},
		{
			name:            "high with amplifying epss but no exploit flags",
			v:               Vulnerability{CVSSScore: Float64(8.5), HasTemplate: true, EPSSScore: Float64(0.6)},
			wantScore:       true,
			wantExploitable: false,
		},
		{
			name: "medium",
			v:    Vulnerability{CVSSScore: Float64(5), HasPoC: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantScore, IsHighRisk(tt.v))
			assert.Equal(t, tt.wantExploitable, ExploitableRule{}.IsHighRisk(tt.v))
		})
	}
}

func TestHighRiskRuleByName(t *testing.T) {
	r, err := HighRiskRuleByName("", 12)
	assert.NoError(t, err)
	assert.Equal(t, "score", r.Name())
	r, err = HighRiskRuleByName("exploitable", 12)
	assert.NoError(t, err)
	assert.Equal(t, "exploitable", r.Name())
	_, err = HighRiskRuleByName("random", 12)
	assert.Error(t, err)
}
