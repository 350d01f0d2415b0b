// Package plot renders simulated property trajectories to an image.
package plot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/motion/cmd/motion/internal/sim"
)

// Point is one sample of a series.
type Point struct {
	T time.Duration
	V float64
}

// Series is the trajectory of one target property.
type Series struct {
	Label  string
	Points []Point
}

// FromFrames splits frames into one series per target property, labelled
// "target.property", in target order then property order.
func FromFrames(frames []sim.Frame, props map[string][]string, targets []string) []Series {
	var out []Series
	index := make(map[string]int)
	for _, target := range targets {
		for _, prop := range props[target] {
			index[target+"."+prop] = len(out)
			out = append(out, Series{Label: target + "." + prop})
		}
	}
	for _, f := range frames {
		for _, st := range f.States {
			for prop, v := range st.Values {
				i, ok := index[st.Target+"."+prop]
				if !ok {
					continue
				}
				out[i].Points = append(out[i].Points, Point{T: f.Time, V: v})
			}
		}
	}
	return out
}

// Options controls the output image.
type Options struct {
	Width  int
	Height int
	// Supersample renders lines at this multiple of the output size and
	// scales down, for smoother strokes. Zero means 2.
	Supersample int
}

// Default image size.
const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

const margin = 40

// Palette is the series color cycle.
var Palette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

var (
	background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	axis       = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	textColor  = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
)

// Render draws every series on shared axes: time across, value up.
func Render(series []Series, opts Options) (*image.RGBA, error) {
	w, h := opts.Width, opts.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	if w <= 2*margin || h <= 2*margin {
		return nil, fmt.Errorf("plot: image %dx%d is too small (minimum %dx%d)", w, h, 2*margin+1, 2*margin+1)
	}
	ss := opts.Supersample
	if ss <= 0 {
		ss = 2
	}

	tmax, vmin, vmax := bounds(series)
	canvas := image.NewRGBA(image.Rect(0, 0, w*ss, h*ss))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	plotArea := image.Rect(margin*ss, margin*ss/2, (w-margin/2)*ss, (h-margin)*ss)
	line(canvas, plotArea.Min.X, plotArea.Max.Y, plotArea.Max.X, plotArea.Max.Y, ss, axis)
	line(canvas, plotArea.Min.X, plotArea.Min.Y, plotArea.Min.X, plotArea.Max.Y, ss, axis)

	project := func(p Point) (int, int) {
		x := plotArea.Min.X
		if tmax > 0 {
			x += int(float64(plotArea.Dx()) * float64(p.T) / float64(tmax))
		}
		y := plotArea.Max.Y - int(float64(plotArea.Dy())*(p.V-vmin)/(vmax-vmin))
		return x, y
	}
	for i, s := range series {
		c := Palette[i%len(Palette)]
		for j := 1; j < len(s.Points); j++ {
			x0, y0 := project(s.Points[j-1])
			x1, y1 := project(s.Points[j])
			line(canvas, x0, y0, x1, y1, ss, c)
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(img, img.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)

	// Text is drawn at output resolution so the bitmap font stays sharp.
	area := image.Rect(plotArea.Min.X/ss, plotArea.Min.Y/ss, plotArea.Max.X/ss, plotArea.Max.Y/ss)
	label(img, 4, area.Min.Y+10, formatValue(vmax), textColor)
	label(img, 4, area.Max.Y, formatValue(vmin), textColor)
	label(img, area.Min.X, area.Max.Y+16, "0s", textColor)
	end := tmax.String()
	label(img, area.Max.X-textWidth(end), area.Max.Y+16, end, textColor)

	y := area.Min.Y + 14
	for i, s := range series {
		c := Palette[i%len(Palette)]
		x := area.Min.X + 8
		draw.Draw(img, image.Rect(x, y-9, x+10, y+1), image.NewUniform(c), image.Point{}, draw.Src)
		label(img, x+14, y, s.Label, textColor)
		y += 15
	}
	return img, nil
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func bounds(series []Series) (tmax time.Duration, vmin, vmax float64) {
	vmin, vmax = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			tmax = max(tmax, p.T)
			vmin = math.Min(vmin, p.V)
			vmax = math.Max(vmax, p.V)
		}
	}
	if math.IsInf(vmin, 1) {
		vmin, vmax = 0, 1
	}
	if vmax-vmin < 1e-9 {
		vmin, vmax = vmin-1, vmax+1
	}
	return tmax, vmin, vmax
}

// line draws a segment of the given thickness with a simple DDA.
func line(img *image.RGBA, x0, y0, x1, y1, thickness int, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy), 1)
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		x := x0 + dx*i/steps
		y := y0 + dy*i/steps
		for ox := -half; ox < thickness-half; ox++ {
			for oy := -half; oy < thickness-half; oy++ {
				img.SetRGBA(x+ox, y+oy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func label(img *image.RGBA, x, y int, text string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func textWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.4g", v)
}
