package lighting

import "github.com/ironsheep/framematch/internal/classify"

// Direction is the side the key light falls from, as seen from the camera.
type Direction int

const (
	Left Direction = iota
	Right
	Frontal
)

var directionNames = []string{"left", "right", "frontal"}

func (d Direction) String() string { return classify.Name("Direction", directionNames, int(d)) }

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return classify.MarshalName("Direction", directionNames, int(d))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Direction", directionNames, text)
	*d = Direction(v)
	return err
}

// Quality describes how abruptly light turns into shadow.
type Quality int

const (
	Hard Quality = iota
	Soft
)

var qualityNames = []string{"hard", "soft"}

func (q Quality) String() string { return classify.Name("Quality", qualityNames, int(q)) }

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	return classify.MarshalName("Quality", qualityNames, int(q))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quality) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Quality", qualityNames, text)
	*q = Quality(v)
	return err
}

// Pattern is a named portrait lighting setup.
type Pattern int

const (
	Split Pattern = iota
	Rembrandt
	Butterfly
	Loop
)

var patternNames = []string{"Split", "Rembrandt", "Butterfly", "Loop"}

func (p Pattern) String() string { return classify.Name("Pattern", patternNames, int(p)) }

// MarshalText implements encoding.TextMarshaler.
func (p Pattern) MarshalText() ([]byte, error) {
	return classify.MarshalName("Pattern", patternNames, int(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pattern) UnmarshalText(text []byte) error {
	v, err := classify.ParseName("Pattern", patternNames, text)
	*p = Pattern(v)
	return err
}
