package config

const (
	defaultFPS           = 60
	defaultInterpolation = "step"
	defaultOnsetWidth    = 0.05
	defaultDuration      = 30
	defaultBPM           = 120
	defaultLogFormat     = "auto"
	defaultLogLevel      = "info"
	defaultViewTitle     = "marionette"
	defaultViewWidth     = 800
	defaultViewHeight    = 600
	defaultViewZoom      = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Playback: Playback{
			FPS:           defaultFPS,
			Loop:          true,
			Interpolation: defaultInterpolation,
			OnsetWidth:    defaultOnsetWidth,
			Duration:      defaultDuration,
			BPM:           defaultBPM,
		},
		Smoothing: Smoothing{
			Mode: "none",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		View: View{
			Title:     defaultViewTitle,
			Width:     defaultViewWidth,
			Height:    defaultViewHeight,
			Zoom:      defaultViewZoom,
			ShowBones: true,
			ShowHUD:   true,
		},
	}
}
