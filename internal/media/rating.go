package media

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Scale is the maximum of a source's native rating scale.
type Scale float64

const (
	ScaleTMDB        Scale = 10
	ScaleGoogleBooks Scale = 5
	ScaleIGDB        Scale = 100
)

// RatingScale is a target scale with a fixed rounding precision.
type RatingScale struct {
	Max       float64
	Precision int
}

// DefaultTargetScale is the scale every normalized source rating uses.
var DefaultTargetScale = RatingScale{Max: 20, Precision: 1}

// Convert rescales raw from source onto s. A nil, NaN or infinite raw
// value, or one outside [0, source], yields nil, never zero.
func (s RatingScale) Convert(raw *float64, source Scale) *float64 {
	if raw == nil || math.IsNaN(*raw) || math.IsInf(*raw, 0) || source <= 0 || s.Max <= 0 {
		return nil
	}
	if *raw < 0 || *raw > float64(source) {
		return nil
	}
	v := Round(*raw/float64(source)*s.Max, s.Precision)
	return &v
}

// ConvertRating rescales raw onto DefaultTargetScale.
func ConvertRating(raw *float64, source Scale) *float64 {
	return DefaultTargetScale.Convert(raw, source)
}

// Round rounds v half away from zero to precision decimal places.
func Round(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

// NonZero returns a pointer to v, or nil for zero. Zero counts as "no rating" for sources
// that report 0 when nobody has voted.
func NonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

// RawRating is an upstream rating field that decodes from a JSON number or
// a numeric string. Anything else, such as "N/A" or an object, decodes to
// no rating instead of failing the whole response.
type RawRating struct {
	V *float64
}

func (r *RawRating) UnmarshalJSON(data []byte) error {
	r.V = nil

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		text = strings.TrimSpace(str)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r.V = &v
	return nil
}

func (r RawRating) MarshalJSON() ([]byte, error) {
	if r.V == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*r.V)
}
