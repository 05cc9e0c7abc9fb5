package metadata

/** @brief The default texture name. */
const DEFAULT_TEXTURE_NAME string = "default"

type TextureReference struct {
	ReferenceCount uint64
	Handle         uint32
	AutoRelease    bool
}

// Also used as result_data from job.
type TextureLoadParams struct {
	ResourceName string
	OutTexture   *Texture
	TempTexture  *Texture
	Image        *ImageResourceData
}

type TextureFlag uint8

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Indicates if the texture can be written (rendered) to. */
	TextureFlagIsWriteable TextureFlag = 0x2
	/** @brief Indicates the pixel data is stored with premultiplied alpha. */
	TextureFlagPremultipliedAlpha TextureFlag = 0x4
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

func (f TextureFlagBits) Has(flag TextureFlag) bool {
	return uint8(f)&uint8(flag) != 0
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is reloaded. */
	Generation uint32
	/** @brief The texture Name, either a path or a registered key. */
	Name string
	/** @brief Sampling mode used by the backend. */
	Filter TextureFilter
	/** @brief Backend-owned pixel storage. */
	InternalData interface{}
}

func (t *Texture) HasPremultipliedAlpha() bool {
	return t != nil && t.Flags.Has(TextureFlagPremultipliedAlpha)
}

// NewDefaultTexturePixels returns the 2x2 opaque white RGBA fallback.
func NewDefaultTexturePixels() (*Texture, []uint8) {
	pixels := make([]uint8, 2*2*4)
	for i := range pixels {
		pixels[i] = 0xff
	}
	return &Texture{
		Name:         DEFAULT_TEXTURE_NAME,
		Width:        2,
		Height:       2,
		ChannelCount: 4,
		Generation:   InvalidID,
		Filter:       TextureFilterModeNearest,
	}, pixels
}

/** @brief Represents a render target, which is used for rendering to a texture. */
type RenderTarget struct {
	/** @brief The colour attachment; it can be sampled once the target has been rendered. */
	Texture *Texture
	/** @brief Colour the target is cleared to before its commands run. */
	ClearColor [4]float32
	/** @brief Clear the target at the start of every frame. */
	AutoClear bool
	/** @brief Backend-owned framebuffer data. */
	InternalFramebuffer interface{}
}
