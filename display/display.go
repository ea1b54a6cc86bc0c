// Package display implements a multiplexed LED matrix of the kind driven
// directly off MCU port pins. The MCU strobes one column at a time and a
// steady image only exists because the strobe loop re-asserts state faster
// than the eye can follow, so the driver re-samples the column and row
// masks on every write and integrates lit time per LED across a refresh
// window. At the end of each window the persistence-of-vision result is
// rendered into a frame and handed to the FrameDone callback.
package display

import (
	"fmt"
	"image"
	"image/color"
)

const (
	// The matrix can't be wider than the 8 bit masks feeding it.
	kMaxCols = 8
	kMaxRows = 8
)

// Display holds the matrix masks and the per-LED accumulation state.
type Display struct {
	cols, rows int
	colMask    uint8 // Current column select, bit per column.
	rowMask    uint8 // Current row data, bit per row.

	onTime     [kMaxCols][kMaxRows]uint64 // Lit cycles this refresh window.
	windowTime uint64                     // Total cycles this refresh window.
	frameTicks uint64
	picture    *image.NRGBA
	frameDone  func(*image.NRGBA)
	frames     uint64
}

// DisplayDef defines the pieces needed to set up a Display.
type DisplayDef struct {
	// Cols and Rows give the matrix size. 1-8 each.
	Cols int
	Rows int

	// FrameTicks is the length of a refresh window in clock cycles.
	FrameTicks uint64

	// FrameDone, if non-nil, is called at the end of every refresh window
	// with the rendered frame. One pixel per LED, red channel carrying the
	// duty cycle brightness. The image is reused between frames.
	FrameDone func(*image.NRGBA)
}

// Init returns a fully initialized Display with all LEDs dark.
func Init(def *DisplayDef) (*Display, error) {
	if def.Cols < 1 || def.Cols > kMaxCols {
		return nil, fmt.Errorf("invalid Cols: %d", def.Cols)
	}
	if def.Rows < 1 || def.Rows > kMaxRows {
		return nil, fmt.Errorf("invalid Rows: %d", def.Rows)
	}
	if def.FrameTicks == 0 {
		return nil, fmt.Errorf("invalid FrameTicks: %d", def.FrameTicks)
	}
	return &Display{
		cols:       def.Cols,
		rows:       def.Rows,
		frameTicks: def.FrameTicks,
		picture:    image.NewNRGBA(image.Rect(0, 0, def.Cols, def.Rows)),
		frameDone:  def.FrameDone,
	}, nil
}

// WriteCols latches the column select mask. Takes effect immediately for
// all time accumulated from here on.
func (d *Display) WriteCols(mask uint8) {
	d.colMask = mask & (1<<uint(d.cols) - 1)
}

// WriteRows latches the row data mask. Takes effect immediately.
func (d *Display) WriteRows(mask uint8) {
	d.rowMask = mask & (1<<uint(d.rows) - 1)
}

// Lit returns the rows currently being driven in the given column, or 0
// if the column isn't selected. This is the instantaneous state, not the
// persistence-of-vision result.
func (d *Display) Lit(col int) uint8 {
	if col < 0 || col >= d.cols || d.colMask&(1<<uint(col)) == 0 {
		return 0
	}
	return d.rowMask
}

// Tick accounts c clock cycles of the current masks into the refresh
// window, completing frames as the window fills.
func (d *Display) Tick(c uint64) {
	for c > 0 {
		n := c
		if left := d.frameTicks - d.windowTime; n > left {
			n = left
		}
		for col := 0; col < d.cols; col++ {
			if d.colMask&(1<<uint(col)) == 0 {
				continue
			}
			for row := 0; row < d.rows; row++ {
				if d.rowMask&(1<<uint(row)) != 0 {
					d.onTime[col][row] += n
				}
			}
		}
		d.windowTime += n
		c -= n
		if d.windowTime == d.frameTicks {
			d.completeFrame()
		}
	}
}

// Frames returns the number of completed refresh windows.
func (d *Display) Frames() uint64 {
	return d.frames
}

func (d *Display) completeFrame() {
	for col := 0; col < d.cols; col++ {
		for row := 0; row < d.rows; row++ {
			v := uint8(d.onTime[col][row] * 0xFF / d.windowTime)
			d.picture.SetNRGBA(col, row, color.NRGBA{R: v, A: 0xFF})
			d.onTime[col][row] = 0
		}
	}
	d.windowTime = 0
	d.frames++
	if d.frameDone != nil {
		d.frameDone(d.picture)
	}
}
