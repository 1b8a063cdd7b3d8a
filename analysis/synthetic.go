package analysis

import "math"

// SyntheticConfig describes a generated analysis used for demos and tests
// when no real audio analysis is at hand.
type SyntheticConfig struct {
	Duration float64 // seconds
	FPS      float64 // analysis frames per second
	BPM      float64 // beat rate
}

// Synthetic generates a deterministic analysis: a volume envelope pulsing
// with the beat, a slowly sweeping pitch, a timbre wobble, and a regular beat
// grid.
func Synthetic(cfg SyntheticConfig) *File {
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	if cfg.BPM <= 0 {
		cfg.BPM = 120
	}
	frames := int(cfg.Duration * cfg.FPS)
	beat := 60 / cfg.BPM

	volume := make([]float64, frames)
	pitch := make([]float64, frames)
	timbre := make([]float64, frames)
	for i := range frames {
		t := float64(i) / cfg.FPS
		phase := math.Mod(t, beat) / beat
		volume[i] = 0.3 + 0.7*math.Exp(-4*phase)
		pitch[i] = 0.5 + 0.5*math.Sin(2*math.Pi*t/8)
		timbre[i] = 0.5 + 0.4*math.Sin(2*math.Pi*t/3+1)
	}

	var beats []float64
	for t := beat; t < cfg.Duration; t += beat {
		beats = append(beats, t)
	}

	return &File{
		Info: Info{
			Filename: "synthetic",
			Duration: cfg.Duration,
			FPS:      cfg.FPS,
		},
		Continuous: map[string][]float64{
			"volume": volume,
			"pitch":  pitch,
			"timbre": timbre,
		},
		Triggers: map[string][]float64{
			"beats": beats,
		},
	}
}
