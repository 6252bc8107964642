package grade

import "github.com/ironsheep/framematch/internal/classify"

// Temperature is the overall white balance of the grade. The zero value is
// Neutral.
type Temperature int

const (
	Neutral Temperature = iota
	Warm
	Cool
)

var temperatureNames = []string{"neutral", "warm", "cool"}

func (t Temperature) String() string { return classify.Name("Temperature", temperatureNames, int(t)) }

// MarshalText implements encoding.TextMarshaler.
func (t Temperature) MarshalText() ([]byte, error) {
	return classify.MarshalName("Temperature", temperatureNames, int(t))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Temperature) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Temperature", temperatureNames, text)
	*t = Temperature(v)
	return err
}

// Saturation is the overall color intensity.
type Saturation int

const (
	Desaturated Saturation = iota
	NormalSaturation
	Saturated
)

var saturationNames = []string{"desaturated", "normal", "saturated"}

func (s Saturation) String() string { return classify.Name("Saturation", saturationNames, int(s)) }

// MarshalText implements encoding.TextMarshaler.
func (s Saturation) MarshalText() ([]byte, error) {
	return classify.MarshalName("Saturation", saturationNames, int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Saturation) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Saturation", saturationNames, text)
	*s = Saturation(v)
	return err
}

// Contrast is the overall luminance spread.
type Contrast int

const (
	LowContrast Contrast = iota
	MediumContrast
	HighContrast
)

var contrastNames = []string{"low", "medium", "high"}

func (c Contrast) String() string { return classify.Name("Contrast", contrastNames, int(c)) }

// MarshalText implements encoding.TextMarshaler.
func (c Contrast) MarshalText() ([]byte, error) {
	return classify.MarshalName("Contrast", contrastNames, int(c))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Contrast) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Contrast", contrastNames, text)
	*c = Contrast(v)
	return err
}
