// Package editsettings holds the edit configuration for one editing session.
package editsettings

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cast"
)

// NoiseReduction is the denoise strength sent to the processing backend.
// The zero value means no noise reduction.
type NoiseReduction string

const (
	NoiseNone   NoiseReduction = ""
	NoiseLight  NoiseReduction = "light"
	NoiseMedium NoiseReduction = "medium"
	NoiseHeavy  NoiseReduction = "heavy"
)

// UnmarshalJSON accepts "none" and mixed case. Unknown values are kept as-is
// so Validate reports them.
func (n *NoiseReduction) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("noise_reduction: %w", err)
	}
	if nr, ok := ParseNoiseReduction(v); ok {
		*n = nr
		return nil
	}
	*n = NoiseReduction(v)
	return nil
}

// Format is the output container.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatMOV  Format = "mov"
	FormatAVI  Format = "avi"
)

// Setting keys, matching the JSON field names the backend expects.
const (
	KeyVolume         = "volume"
	KeyBrightness     = "brightness"
	KeyContrast       = "contrast"
	KeySaturation     = "saturation"
	KeyBlur           = "blur"
	KeySharpen        = "sharpen"
	KeyNoiseReduction = "noise_reduction"
	KeyStabilization  = "stabilization"
	KeySpeed          = "speed"
	KeyFormat         = "format"
	KeyFilters        = "filters"
)

var (
	ErrUnknownKey   = errors.New("unknown setting")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Settings is the full edit configuration. It marshals flat so it can be
// embedded in backend request bodies.
type Settings struct {
	Volume         float64        `json:"volume" validate:"gte=0,lte=3"`
	Brightness     float64        `json:"brightness" validate:"gte=-1,lte=1"`
	Contrast       float64        `json:"contrast" validate:"gte=0,lte=3"`
	Saturation     float64        `json:"saturation" validate:"gte=0,lte=3"`
	Blur           float64        `json:"blur" validate:"gte=0,lte=10"`
	Sharpen        float64        `json:"sharpen" validate:"gte=0,lte=5"`
	NoiseReduction NoiseReduction `json:"noise_reduction" validate:"omitempty,oneof=light medium heavy"`
	Stabilization  bool           `json:"stabilization"`
	Speed          float64        `json:"speed" validate:"gte=0.25,lte=4"`
	Format         Format         `json:"format" validate:"required,oneof=mp4 webm mov avi"`
	Filters        []string       `json:"filters" validate:"dive,preset"`
}

// Default returns the documented default configuration.
func Default() Settings {
	return Settings{
		Volume:         1,
		Brightness:     0,
		Contrast:       1,
		Saturation:     1,
		Blur:           0,
		Sharpen:        0,
		NoiseReduction: NoiseNone,
		Stabilization:  false,
		Speed:          1,
		Format:         FormatMP4,
		Filters:        []string{},
	}
}

// Reset restores every field to its default.
func (s *Settings) Reset() {
	*s = Default()
}

// Clone returns a deep copy. Filters is never nil in the copy.
func (s Settings) Clone() Settings {
	out := s
	out.Filters = make([]string, len(s.Filters))
	copy(out.Filters, s.Filters)
	return out
}

// Equal reports whether two configurations are identical, filter order included.
func (s Settings) Equal(o Settings) bool {
	return s.Volume == o.Volume &&
		s.Brightness == o.Brightness &&
		s.Contrast == o.Contrast &&
		s.Saturation == o.Saturation &&
		s.Blur == o.Blur &&
		s.Sharpen == o.Sharpen &&
		s.NoiseReduction == o.NoiseReduction &&
		s.Stabilization == o.Stabilization &&
		s.Speed == o.Speed &&
		s.Format == o.Format &&
		slices.Equal(s.Filters, o.Filters)
}

// Set replaces the field named by key. Numeric fields accept any numeric
// value or numeric string; ranges are not enforced here, callers clamp.
func (s *Settings) Set(key string, value any) error {
	switch key {
	case KeyVolume, KeyBrightness, KeyContrast, KeySaturation, KeyBlur, KeySharpen, KeySpeed:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		*s.floatField(key) = f
	case KeyNoiseReduction:
		str, err := cast.ToStringE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		nr, ok := ParseNoiseReduction(str)
		if !ok {
			return fmt.Errorf("%w: %s: %q", ErrInvalidValue, key, str)
		}
		s.NoiseReduction = nr
	case KeyStabilization:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		s.Stabilization = b
	case KeyFormat:
		str, err := cast.ToStringE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		f, ok := ParseFormat(str)
		if !ok {
			return fmt.Errorf("%w: %s: %q", ErrInvalidValue, key, str)
		}
		s.Format = f
	case KeyFilters:
		ids, err := cast.ToStringSliceE(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, key, err)
		}
		s.Filters = slices.Clone(ids)
		if s.Filters == nil {
			s.Filters = []string{}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// Get returns the current value of the field named by key.
func (s Settings) Get(key string) (any, error) {
	switch key {
	case KeyVolume, KeyBrightness, KeyContrast, KeySaturation, KeyBlur, KeySharpen, KeySpeed:
		return *s.floatField(key), nil
	case KeyNoiseReduction:
		return s.NoiseReduction, nil
	case KeyStabilization:
		return s.Stabilization, nil
	case KeyFormat:
		return s.Format, nil
	case KeyFilters:
		return slices.Clone(s.Filters), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

func (s *Settings) floatField(key string) *float64 {
	switch key {
	case KeyVolume:
		return &s.Volume
	case KeyBrightness:
		return &s.Brightness
	case KeyContrast:
		return &s.Contrast
	case KeySaturation:
		return &s.Saturation
	case KeyBlur:
		return &s.Blur
	case KeySharpen:
		return &s.Sharpen
	case KeySpeed:
		return &s.Speed
	}
	panic("editsettings: not a numeric key: " + key)
}

// ParseNoiseReduction accepts the backend values plus "none".
func ParseNoiseReduction(v string) (NoiseReduction, bool) {
	switch NoiseReduction(strings.ToLower(strings.TrimSpace(v))) {
	case NoiseNone, "none":
		return NoiseNone, true
	case NoiseLight:
		return NoiseLight, true
	case NoiseMedium:
		return NoiseMedium, true
	case NoiseHeavy:
		return NoiseHeavy, true
	}
	return "", false
}

// ParseFormat accepts an output container name, case-insensitively.
func ParseFormat(v string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(v)))
	switch f {
	case FormatMP4, FormatWebM, FormatMOV, FormatAVI:
		return f, true
	}
	return "", false
}
