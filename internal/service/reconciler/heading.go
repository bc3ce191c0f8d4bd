package reconciler

import "math"

// iconHeadingOffset corrects for the marker icon pointing north-east at rest.
const iconHeadingOffset = -45.0

// DisplayHeading converts an aircraft heading into the rotation applied to
// its marker, normalized to [0, 360).
func DisplayHeading(heading float64) float64 {
	h := math.Mod(heading+iconHeadingOffset, 360)
	if h < 0 {
		h += 360
	}
	// adding 360 to a tiny negative remainder rounds to exactly 360
	if h >= 360 {
		h -= 360
	}
	return h
}
