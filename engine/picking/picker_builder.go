package picking

// PickerBuilderOption is a functional option for configuring a Picker.
type PickerBuilderOption func(*picker)

// WithPickSize sets the side of the square selection window around the cursor. Defaults to 3.
//
// Parameters:
//   - px: the window side in pixels
//
// Returns:
//   - PickerBuilderOption: option function to apply
func WithPickSize(px float64) PickerBuilderOption {
	return func(p *picker) {
		if px > 0 {
			p.pickSize = px
		}
	}
}

// WithSelectCapacity sets the minimum number of hit records a selection pass keeps.
//
// Parameters:
//   - n: the capacity
//
// Returns:
//   - PickerBuilderOption: option function to apply
func WithSelectCapacity(n int) PickerBuilderOption {
	return func(p *picker) {
		p.capacity = n
	}
}

// WithDragCallback sets the callback invoked after every drag update.
//
// Parameters:
//   - cb: the callback
//
// Returns:
//   - PickerBuilderOption: option function to apply
func WithDragCallback(cb DragCallback) PickerBuilderOption {
	return func(p *picker) {
		p.onDrag = cb
	}
}
