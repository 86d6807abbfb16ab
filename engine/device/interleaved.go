package device

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
)

// interleaved draws the left eye on even window rows and the right eye on odd rows, for
// line-polarized displays. The row mask is rebuilt whenever the window size changes.
type interleaved struct {
	width, height int
	dirty         bool
	swap          bool
}

var (
	_ Driver     = &interleaved{}
	_ Resizer    = &interleaved{}
	_ KeyHandler = &interleaved{}
)

func (d *interleaved) Prepare(opts Options) error {
	d.width, d.height = opts.Width, opts.Height
	d.swap = opts.Params["swap"] == "true"
	d.dirty = true
	return nil
}

func (d *interleaved) Resize(width, height int) {
	d.width, d.height = width, height
	d.dirty = true
}

// Key toggles which eye lands on even rows.
func (d *interleaved) Key(ch rune) bool {
	if ch != 'i' {
		return false
	}
	d.swap = !d.swap
	common.Logger().Info("interleaved eye swap", "swapped", d.swap)
	return true
}

func (d *interleaved) Draw(f Frame) {
	if d.dirty || f.Width != d.width || f.Height != d.height {
		d.width, d.height = f.Width, f.Height
		f.Backend.SetRowMask(d.width, d.height)
		d.dirty = false
	}
	for _, v := range f.Views {
		even, odd := renderer.RowsEven, renderer.RowsOdd
		if d.swap {
			even, odd = odd, even
		}
		parity := renderer.RowsAll
		switch v.Eye {
		case compositor.EyeLeft:
			parity = even
		case compositor.EyeRight:
			parity = odd
		}
		f.Backend.SetRowParity(parity)
		f.DrawScene(v)
	}
	f.Backend.SetRowParity(renderer.RowsAll)
}
