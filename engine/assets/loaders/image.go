package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

type ImageLoader struct{}

/**
 * @brief Decodes a png, jpeg, bmp, webp or tga file into 8-bit RGBA.
 * params may be nil or *metadata.ImageResourceParams.
 */
func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if assetType != metadata.ResourceTypeImage {
		return nil, fmt.Errorf("image loader cannot load %s resources", assetType)
	}
	opts := &metadata.ImageResourceParams{}
	if params != nil {
		p, ok := params.(*metadata.ImageResourceParams)
		if !ok {
			return nil, fmt.Errorf("image loader expects *ImageResourceParams, got %T", params)
		}
		opts = p
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image '%s': %w", path, err)
	}

	nrgba := ToNRGBA(img)
	if opts.FlipY {
		flipRows(nrgba)
	}
	data := &metadata.ImageResourceData{
		ChannelCount: 4,
		Width:        uint32(nrgba.Rect.Dx()),
		Height:       uint32(nrgba.Rect.Dy()),
		Pixels:       nrgba.Pix,
	}
	for i := 3; i < len(data.Pixels); i += 4 {
		if data.Pixels[i] < 255 {
			data.HasTransparency = true
			break
		}
	}
	if opts.Premultiply {
		premultiply(data.Pixels)
	}

	return &metadata.Resource{
		Name:         format,
		FullPath:     path,
		ResourceType: metadata.ResourceTypeImage,
		DataSize:     uint64(len(data.Pixels)),
		Data:         data,
	}, nil
}

func (il *ImageLoader) Unload(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	res.Data = nil
	res.DataSize = 0
	return nil
}

// ToNRGBA returns src as a tightly packed NRGBA image anchored at (0, 0).
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

func flipRows(img *image.NRGBA) {
	h := img.Rect.Dy()
	stride := img.Stride
	tmp := make([]uint8, stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bottom := img.Pix[(h-1-y)*stride : (h-y)*stride]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}

func premultiply(pix []uint8) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		pix[i] = uint8((uint32(pix[i])*a + 127) / 255)
		pix[i+1] = uint8((uint32(pix[i+1])*a + 127) / 255)
		pix[i+2] = uint8((uint32(pix[i+2])*a + 127) / 255)
	}
}
