package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
)

// glasses holds the colour channels each eye writes.
type glasses struct {
	left, right [3]bool
}

var anaglyphGlasses = map[string]glasses{
	"red-cyan":      {left: [3]bool{true, false, false}, right: [3]bool{false, true, true}},
	"green-magenta": {left: [3]bool{false, true, false}, right: [3]bool{true, false, true}},
}

// anaglyph composes both eyes into one buffer through complementary colour masks.
type anaglyph struct {
	g glasses
}

var (
	_ Driver = &anaglyph{}
)

func (d *anaglyph) Prepare(opts Options) error {
	name := opts.Params["glasses"]
	if name == "" {
		name = "red-cyan"
	}
	g, ok := anaglyphGlasses[name]
	if !ok {
		return fmt.Errorf("device: anaglyph: unknown glasses %q", name)
	}
	d.g = g
	return nil
}

func (d *anaglyph) Draw(f Frame) {
	for i, v := range f.Views {
		if i > 0 {
			f.Backend.ClearDepth()
		}
		m := [3]bool{true, true, true}
		switch v.Eye {
		case compositor.EyeLeft:
			m = d.g.left
		case compositor.EyeRight:
			m = d.g.right
		}
		f.Backend.SetColorMask(m[0], m[1], m[2], true)
		f.DrawScene(v)
	}
	f.Backend.SetColorMask(true, true, true, true)
}
