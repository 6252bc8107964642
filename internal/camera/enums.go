package camera

import "github.com/ironsheep/framematch/internal/classify"

// FocalLength is a coarse focal length class in 35mm-equivalent terms.
type FocalLength int

const (
	Wide FocalLength = iota
	Normal
	Tele
	Telephoto
)

var focalLengthNames = []string{"wide", "normal", "tele", "telephoto"}

func (f FocalLength) String() string { return classify.Name("FocalLength", focalLengthNames, int(f)) }

// MarshalText implements encoding.TextMarshaler.
func (f FocalLength) MarshalText() ([]byte, error) {
	return classify.MarshalName("FocalLength", focalLengthNames, int(f))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FocalLength) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("FocalLength", focalLengthNames, text)
	*f = FocalLength(v)
	return err
}

// DepthOfField follows the aperture: wide apertures give shallow focus.
type DepthOfField int

const (
	Shallow DepthOfField = iota
	Medium
	Deep
)

var depthOfFieldNames = []string{"shallow", "medium", "deep"}

func (d DepthOfField) String() string { return classify.Name("DepthOfField", depthOfFieldNames, int(d)) }

// MarshalText implements encoding.TextMarshaler.
func (d DepthOfField) MarshalText() ([]byte, error) {
	return classify.MarshalName("DepthOfField", depthOfFieldNames, int(d))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DepthOfField) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("DepthOfField", depthOfFieldNames, text)
	*d = DepthOfField(v)
	return err
}

// ISOHint is the sensitivity class.
type ISOHint int

const (
	LowISO ISOHint = iota
	MediumISO
	HighISO
)

var isoHintNames = []string{"low", "medium", "high"}

func (i ISOHint) String() string { return classify.Name("ISOHint", isoHintNames, int(i)) }

// MarshalText implements encoding.TextMarshaler.
func (i ISOHint) MarshalText() ([]byte, error) {
	return classify.MarshalName("ISOHint", isoHintNames, int(i))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ISOHint) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("ISOHint", isoHintNames, text)
	*i = ISOHint(v)
	return err
}

// Shutter is the exposure time class.
type Shutter int

const (
	FastShutter Shutter = iota
	ModerateShutter
	SlowShutter
)

var shutterNames = []string{"fast", "moderate", "slow"}

func (s Shutter) String() string { return classify.Name("Shutter", shutterNames, int(s)) }

// MarshalText implements encoding.TextMarshaler.
func (s Shutter) MarshalText() ([]byte, error) {
	return classify.MarshalName("Shutter", shutterNames, int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shutter) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Shutter", shutterNames, text)
	*s = Shutter(v)
	return err
}

// Source records where a reported value came from.
type Source int

const (
	Estimated Source = iota
	FromExif
)

var sourceNames = []string{"estimated", "exif"}

func (s Source) String() string { return classify.Name("Source", sourceNames, int(s)) }

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return classify.MarshalName("Source", sourceNames, int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Source", sourceNames, text)
	*s = Source(v)
	return err
}
