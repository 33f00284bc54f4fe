package editsettings

import (
	"math"
	"strconv"
)

// ParamType describes the kind of input control for a setting.
type ParamType string

const (
	ParamRange  ParamType = "range"
	ParamSelect ParamType = "select"
	ParamToggle ParamType = "toggle"
)

// Option is a single choice in a select control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Param describes one adjustable setting and its UI-level input range.
type Param struct {
	Key        string    `json:"key"`
	Label      string    `json:"label"`
	Section    string    `json:"section"`
	Type       ParamType `json:"type"`
	Min        float64   `json:"min,omitempty"`
	Max        float64   `json:"max,omitempty"`
	Step       float64   `json:"step,omitempty"`
	DefaultVal string    `json:"default"`
	Decimals   int       `json:"decimals,omitempty"`
	Options    []Option  `json:"options,omitempty"`
}

var FormatOptions = []Option{
	{Value: string(FormatMP4), Label: "MP4 (H.264)"},
	{Value: string(FormatWebM), Label: "WebM"},
	{Value: string(FormatMOV), Label: "MOV"},
	{Value: string(FormatAVI), Label: "AVI"},
}

var NoiseReductionOptions = []Option{
	{Value: string(NoiseNone), Label: "None"},
	{Value: string(NoiseLight), Label: "Light"},
	{Value: string(NoiseMedium), Label: "Medium"},
	{Value: string(NoiseHeavy), Label: "Heavy"},
}

// Params lists every setting in sidebar order.
var Params = []Param{
	{Key: KeyVolume, Label: "Volume", Section: "audio", Type: ParamRange, Min: 0, Max: 3, Step: 0.1, DefaultVal: "1", Decimals: 1},
	{Key: KeyBrightness, Label: "Brightness", Section: "visual", Type: ParamRange, Min: -1, Max: 1, Step: 0.05, DefaultVal: "0", Decimals: 2},
	{Key: KeyContrast, Label: "Contrast", Section: "visual", Type: ParamRange, Min: 0, Max: 3, Step: 0.05, DefaultVal: "1", Decimals: 2},
	{Key: KeySaturation, Label: "Saturation", Section: "visual", Type: ParamRange, Min: 0, Max: 3, Step: 0.05, DefaultVal: "1", Decimals: 2},
	{Key: KeyBlur, Label: "Blur", Section: "effects", Type: ParamRange, Min: 0, Max: 10, Step: 0.5, DefaultVal: "0", Decimals: 1},
	{Key: KeySharpen, Label: "Sharpen", Section: "effects", Type: ParamRange, Min: 0, Max: 5, Step: 0.1, DefaultVal: "0", Decimals: 1},
	{Key: KeyNoiseReduction, Label: "Noise Reduction", Section: "effects", Type: ParamSelect, DefaultVal: "", Options: NoiseReductionOptions},
	{Key: KeyStabilization, Label: "Video Stabilization", Section: "effects", Type: ParamToggle, DefaultVal: "false"},
	{Key: KeySpeed, Label: "Playback Speed", Section: "performance", Type: ParamRange, Min: 0.25, Max: 4, Step: 0.25, DefaultVal: "1", Decimals: 2},
	{Key: KeyFormat, Label: "Output Format", Section: "output", Type: ParamSelect, DefaultVal: string(FormatMP4), Options: FormatOptions},
}

// LookupParam returns the descriptor for key.
func LookupParam(key string) (Param, bool) {
	for _, p := range Params {
		if p.Key == key {
			return p, true
		}
	}
	return Param{}, false
}

// Clamp limits v to the input range of a numeric setting. Keys without a
// range are returned unchanged. NaN clamps to the range minimum.
func Clamp(key string, v float64) float64 {
	p, ok := LookupParam(key)
	if !ok || p.Type != ParamRange {
		return v
	}
	if math.IsNaN(v) {
		return p.Min
	}
	return math.Max(p.Min, math.Min(p.Max, v))
}

// FmtNum formats a value the way a range readout shows it.
func (p Param) FmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', p.Decimals, 64)
}
