package analysis

import (
	"fmt"
	"strings"

	"github.com/ironsheep/framematch/internal/grade"
	"github.com/ironsheep/framematch/internal/lighting"
)

// Summary describes the report in a short paragraph.
func Summary(rep *Report) string {
	cam, light, color := rep.Camera, rep.Lighting, rep.Color
	return fmt.Sprintf(
		"This appears to be a %s depth of field shot, likely captured with a %s lens at %s. "+
			"The lighting is %s with the key light positioned at %s %s. "+
			"The color grade features %s tones with %s contrast.",
		cam.DepthOfField, cam.FocalLengthLabel, cam.Aperture,
		light.Quality, light.KeyLightAngle, keySide(light.Direction),
		color.Temperature, color.Contrast,
	)
}

// RecreationGuide lists practical steps to reproduce the look.
func RecreationGuide(rep *Report) []string {
	cam, light, color := rep.Camera, rep.Lighting, rep.Color
	guide := []string{
		fmt.Sprintf("Use a %s lens at %s for similar depth of field", cam.FocalLengthLabel, cam.Aperture),
		fmt.Sprintf("Shoot at %s with a shutter speed around %s", cam.ISOLabel, cam.ShutterSpeed),
		fmt.Sprintf("Position your key light at %s %s, %s", light.KeyLightAngle, keySide(light.Direction), light.VerticalPosition),
		fmt.Sprintf("Use a %s light source (softbox for soft, bare bulb for hard)", light.Quality),
		fmt.Sprintf("Aim for a %s lighting ratio between key and fill", light.Ratio),
		fmt.Sprintf("In post, apply a %s grade with %s contrast", color.Temperature, color.Contrast),
		shadowStep(color),
	}
	if color.ShadowsLifted {
		guide = append(guide, "Lift the black point for a faded, matte finish")
	}
	if color.HighlightsCrushed {
		guide = append(guide, "Roll off the highlights below pure white")
	}
	return guide
}

func keySide(d lighting.Direction) string {
	switch d {
	case lighting.Left:
		return "from camera left"
	case lighting.Right:
		return "from camera right"
	default:
		return "on the camera axis"
	}
}

func shadowStep(color grade.Estimate) string {
	if color.ShadowTint.IsNeutral() {
		return "Keep the shadows neutral"
	}
	return fmt.Sprintf("Push shadows toward %s for the cinematic look", strings.ToLower(grade.HueName(color.ShadowTint.Hue)))
}
