// Package profile produces renewable capacity-factor series for scenarios
// that do not come with measured data.
package profile

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/raterudder/ptxhub/pkg/types"
)

// Constant returns profiles holding the same capacity factor every hour.
func Constant(hours int, pvFixed, pvTracking, wind, wave float64) types.Profiles {
	return types.Profiles{
		PVFixed:    fill(hours, pvFixed),
		PVTracking: fill(hours, pvTracking),
		Wind:       fill(hours, wind),
		Wave:       fill(hours, wave),
	}
}

func fill(hours int, v float64) []float64 {
	s := make([]float64, hours)
	for i := range s {
		s[i] = v
	}
	return s
}

// wind turbine power curve in m/s
const (
	cutIn   = 3.0
	rated   = 12.0
	cutOut  = 25.0
	meanV   = 7.5
	spreadV = 3.0
)

// Synthetic returns a plausible year of capacity factors for a mid-latitude
// coastal site. The same seed always yields the same series. Hour 0 is
// midnight of January 1st.
func Synthetic(hours int, seed uint64) types.Profiles {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := types.Profiles{
		PVFixed:    make([]float64, hours),
		PVTracking: make([]float64, hours),
		Wind:       make([]float64, hours),
		Wave:       make([]float64, hours),
	}

	var cloud, wind, swell float64
	for h := 0; h < hours; h++ {
		day := float64(h / 24)
		hour := float64(h % 24)

		// cloud cover changes once a day
		if h%24 == 0 {
			cloud = 0.6 + 0.4*rng.Float64()
		}
		season := 1 + 0.25*math.Cos(2*math.Pi*(day-172)/365)
		sun := math.Sin(math.Pi * (hour - 6) / 12)
		if sun > 0 {
			p.PVFixed[h] = clamp(0.8 * sun * cloud * season / 1.25)
			p.PVTracking[h] = clamp(0.85 * math.Pow(sun, 0.5) * cloud * season / 1.25)
		}

		wind = 0.97*wind + 0.25*rng.NormFloat64()
		p.Wind[h] = powerCurve(meanV + spreadV*wind*(1+0.2*math.Cos(2*math.Pi*day/365)))

		swell = 0.995*swell + 0.1*rng.NormFloat64()
		p.Wave[h] = clamp(0.35 + 0.25*swell)
	}
	return p
}

func powerCurve(v float64) float64 {
	switch {
	case v < cutIn, v >= cutOut:
		return 0
	case v >= rated:
		return 1
	}
	return math.Pow((v-cutIn)/(rated-cutIn), 3)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Summary describes one series.
type Summary struct {
	Kind types.ProfileKind
	Mean float64
	Std  float64
	// FullLoadHours is the annual energy per MW of capacity.
	FullLoadHours float64
}

// Summarize returns a summary of every series in p.
func Summarize(p types.Profiles) []Summary {
	var out []Summary
	for _, kind := range types.ProfileKinds() {
		s := p.Get(kind)
		if len(s) == 0 {
			out = append(out, Summary{Kind: kind})
			continue
		}
		mean, std := stat.MeanStdDev(s, nil)
		out = append(out, Summary{
			Kind:          kind,
			Mean:          mean,
			Std:           std,
			FullLoadHours: mean * types.HoursPerYear,
		})
	}
	return out
}
