package software

import (
	"fmt"
	"image"
	"image/color"
)

// surface is a colour buffer of float RGBA in [0, 1]. Row 0 is the top row,
// the same layout decoded images use, so textures and render targets sample alike.
type surface struct {
	width  int
	height int
	pix    []float32
}

func newSurface(width, height int) *surface {
	return &surface{
		width:  width,
		height: height,
		pix:    make([]float32, width*height*4),
	}
}

// surfaceFromRGBA8 copies tightly packed 8-bit RGBA pixels.
func surfaceFromRGBA8(width, height int, pixels []uint8) (*surface, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("expected %d bytes of RGBA pixels for %dx%d, got %d", width*height*4, width, height, len(pixels))
	}
	s := newSurface(width, height)
	s.write(pixels)
	return s, nil
}

func (s *surface) write(pixels []uint8) {
	for i, p := range pixels {
		s.pix[i] = float32(p) / 255
	}
}

func (s *surface) clear(c [4]float32) {
	for i := 0; i < len(s.pix); i += 4 {
		s.pix[i] = c[0]
		s.pix[i+1] = c[1]
		s.pix[i+2] = c[2]
		s.pix[i+3] = c[3]
	}
}

func (s *surface) at(x, y int) [4]float32 {
	i := (y*s.width + x) * 4
	return [4]float32{s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3]}
}

func (s *surface) set(x, y int, c [4]float32) {
	i := (y*s.width + x) * 4
	s.pix[i] = c[0]
	s.pix[i+1] = c[1]
	s.pix[i+2] = c[2]
	s.pix[i+3] = c[3]
}

// sample reads the texel nearest to uv, clamping to the edges. v grows downwards.
func (s *surface) sample(u, v float32) [4]float32 {
	if s == nil || s.width == 0 || s.height == 0 {
		return [4]float32{1, 1, 1, 1}
	}
	x := int(u * float32(s.width))
	y := int(v * float32(s.height))
	if x < 0 {
		x = 0
	} else if x >= s.width {
		x = s.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= s.height {
		y = s.height - 1
	}
	return s.at(x, y)
}

func (s *surface) image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := s.at(x, y)
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: toByte(c[3]),
			})
		}
	}
	return img
}

func toByte(f float32) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
