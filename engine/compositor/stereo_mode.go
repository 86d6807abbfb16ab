package compositor

import (
	"fmt"
	"strings"
)

// StereoMode decides how many views a panel is drawn with and where they land.
type StereoMode int

const (
	Mono StereoMode = iota
	// ActiveStereo draws both eyes into the same viewport of a quad-buffered context.
	ActiveStereo
	// DualStereo draws the left eye in the left half and the right eye in the right half.
	DualStereo
	// TrioStereo draws centre, left and right views in thirds, for three projectors.
	TrioStereo
	// AnaglyphStereo composes both eyes through colour masks. Delegated to a device driver.
	AnaglyphStereo
	// InterleavedStereo composes both eyes on alternate rows. Delegated to a device driver.
	InterleavedStereo
	// WarpedDualStereo is DualStereo with keystone correction. Delegated to a device driver.
	WarpedDualStereo
	// Fisheye composes cube-face views for a dome master. Delegated to a device driver.
	Fisheye
)

var stereoNames = map[StereoMode]string{
	Mono:              "mono",
	ActiveStereo:      "active",
	DualStereo:        "dual",
	TrioStereo:        "trio",
	AnaglyphStereo:    "anaglyph",
	InterleavedStereo: "interleaved",
	WarpedDualStereo:  "warped",
	Fisheye:           "fisheye",
}

func (m StereoMode) String() string {
	if s, ok := stereoNames[m]; ok {
		return s
	}
	return fmt.Sprintf("StereoMode(%d)", int(m))
}

// ParseStereoMode parses a mode name as produced by String.
func ParseStereoMode(s string) (StereoMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Mono, nil
	}
	for m, name := range stereoNames {
		if name == s {
			return m, nil
		}
	}
	return Mono, fmt.Errorf("compositor: unknown stereo mode %q", s)
}

// Stereo reports whether the mode renders separate eyes.
func (m StereoMode) Stereo() bool {
	return m != Mono && m != Fisheye
}

// Delegated reports whether the final composition is left to a device driver.
func (m StereoMode) Delegated() bool {
	switch m {
	case AnaglyphStereo, InterleavedStereo, WarpedDualStereo, Fisheye:
		return true
	}
	return false
}

// Driver returns the device driver name a delegated mode resolves to, or "".
func (m StereoMode) Driver() string {
	if !m.Delegated() {
		return ""
	}
	return m.String()
}

// Divisor returns how many side-by-side views share a panel's width.
func (m StereoMode) Divisor() int {
	switch m {
	case DualStereo, WarpedDualStereo:
		return 2
	case TrioStereo:
		return 3
	}
	return 1
}
