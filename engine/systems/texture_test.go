package systems

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-blend/engine/assets"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-blend/engine/renderer/renderertest"
)

func writeImage(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type textureFixture struct {
	ts      *TextureSystem
	js      *JobSystem
	backend *renderertest.Backend
	dir     string
}

func newTextureFixture(t *testing.T, maxCount uint32) *textureFixture {
	core.SetLogOutput(io.Discard)
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "opaque.png"), 2, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	writeImage(t, filepath.Join(dir, "glass.png"), 1, 1, color.NRGBA{R: 200, A: 128})

	am, err := assets.NewAssetManager(&core.AssetsConfig{BaseDir: dir})
	require.NoError(t, err)
	require.NoError(t, am.Initialize())
	t.Cleanup(func() { _ = am.Shutdown() })

	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)
	t.Cleanup(func() { _ = js.Shutdown() })

	b := renderertest.NewBackend()
	r := renderer.New(b)
	require.NoError(t, r.Initialize("test", 8, 8))

	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: maxCount}, js, am, r)
	require.NoError(t, err)
	require.NoError(t, ts.Initialize())
	return &textureFixture{ts: ts, js: js, backend: b, dir: dir}
}

func TestNewTextureSystemValidation(t *testing.T) {
	core.SetLogOutput(io.Discard)
	_, err := NewTextureSystem(&TextureSystemConfig{}, nil, nil, renderer.New(renderertest.NewBackend()))
	assert.Error(t, err)
	_, err = NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 1}, nil, nil, nil)
	assert.ErrorIs(t, err, core.ErrNilResource)
}

func TestDefaultTexture(t *testing.T) {
	f := newTextureFixture(t, 4)
	def := f.ts.DefaultTexture()
	require.NotNil(t, def)
	assert.Equal(t, metadata.DEFAULT_TEXTURE_NAME, def.Name)
	assert.Equal(t, uint32(2), def.Width)
	assert.Equal(t, uint32(0), def.Generation)
	assert.Equal(t, []uint8{255, 255, 255, 255}, def.InternalData.([]uint8)[:4])

	got, err := f.ts.Acquire(metadata.DEFAULT_TEXTURE_NAME, false)
	require.NoError(t, err)
	assert.Same(t, def, got)
}

func TestAcquireCachesAndCounts(t *testing.T) {
	f := newTextureFixture(t, 4)

	a, err := f.ts.Acquire("opaque.png", false)
	require.NoError(t, err)
	b, err := f.ts.Acquire("opaque.png", false)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, uint64(2), f.ts.References("opaque.png"))
	assert.Equal(t, 1, f.ts.Count())
	assert.True(t, a.HasPremultipliedAlpha())
	assert.False(t, a.Flags.Has(metadata.TextureFlagHasTransparency))

	glass, err := f.ts.Acquire("glass.png", true)
	require.NoError(t, err)
	assert.True(t, glass.Flags.Has(metadata.TextureFlagHasTransparency))
	// premultiplied on load: 200 * 128 / 255
	assert.Equal(t, []uint8{100, 0, 0, 128}, glass.InternalData.([]uint8))
}

func TestMissingTextureFallsBackToDefault(t *testing.T) {
	f := newTextureFixture(t, 4)
	got, err := f.ts.Acquire("nope.png", false)
	require.NoError(t, err)
	assert.Same(t, f.ts.DefaultTexture(), got)
	assert.Equal(t, 0, f.ts.Count())
}

func TestReleaseHonoursAutoRelease(t *testing.T) {
	f := newTextureFixture(t, 4)

	glass, err := f.ts.Acquire("glass.png", true)
	require.NoError(t, err)
	_, err = f.ts.Acquire("opaque.png", false)
	require.NoError(t, err)

	handle, ok := f.ts.Handle("glass.png")
	require.True(t, ok)
	assert.Same(t, glass, core.IdentifierOwner(handle))

	f.ts.Release("glass.png")
	assert.Nil(t, core.IdentifierOwner(handle))
	_, ok = f.ts.Handle("glass.png")
	assert.False(t, ok)
	_, ok = f.ts.Get("glass.png")
	assert.False(t, ok)

	f.ts.Release("opaque.png")
	kept, ok := f.ts.Get("opaque.png")
	assert.True(t, ok)
	assert.Equal(t, uint64(0), f.ts.References("opaque.png"))
	assert.NotNil(t, kept.InternalData)

	f.ts.Release("unknown.png")
}

func TestCapacityLimit(t *testing.T) {
	f := newTextureFixture(t, 1)
	_, err := f.ts.Acquire("opaque.png", false)
	require.NoError(t, err)
	_, err = f.ts.Acquire("glass.png", false)
	assert.Error(t, err)
}

func TestAcquireAsync(t *testing.T) {
	f := newTextureFixture(t, 4)

	var loaded, fallback *metadata.Texture
	require.NoError(t, f.ts.AcquireAsync("opaque.png", false, func(tex *metadata.Texture) { loaded = tex }))
	require.NoError(t, f.ts.AcquireAsync("missing.png", false, func(tex *metadata.Texture) { fallback = tex }))
	assert.Nil(t, loaded)

	f.js.Wait()
	require.NotNil(t, loaded)
	assert.Equal(t, "opaque.png", loaded.Name)
	assert.Equal(t, uint32(0), loaded.Generation)
	assert.NotNil(t, loaded.InternalData)
	assert.Same(t, f.ts.DefaultTexture(), fallback)

	var again *metadata.Texture
	require.NoError(t, f.ts.AcquireAsync("opaque.png", false, func(tex *metadata.Texture) { again = tex }))
	assert.Same(t, loaded, again)
	assert.Equal(t, uint64(2), f.ts.References("opaque.png"))
}

func TestReloadReplacesPixelsInPlace(t *testing.T) {
	f := newTextureFixture(t, 4)
	tex, err := f.ts.Acquire("opaque.png", false)
	require.NoError(t, err)

	writeImage(t, filepath.Join(f.dir, "opaque.png"), 2, 2, color.NRGBA{B: 255, A: 255})
	require.NoError(t, f.ts.Reload("opaque.png"))
	assert.Equal(t, uint32(1), tex.Generation)
	assert.Equal(t, []uint8{0, 0, 255, 255}, tex.InternalData.([]uint8)[:4])

	writeImage(t, filepath.Join(f.dir, "opaque.png"), 3, 1, color.NRGBA{G: 255, A: 255})
	require.NoError(t, f.ts.Reload("opaque.png"))
	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Generation)

	assert.ErrorIs(t, f.ts.Reload("never-loaded.png"), core.ErrTextureNotLoaded)
}

func TestRegisterGenerated(t *testing.T) {
	f := newTextureFixture(t, 4)
	tex, err := f.ts.RegisterGenerated("render-texture", 16, 8)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tex.Name, "render-texture-"))
	assert.True(t, tex.Flags.Has(metadata.TextureFlagIsWriteable))
	assert.True(t, tex.HasPremultipliedAlpha())
	assert.Len(t, tex.InternalData.([]uint8), 16*8*4)

	other, err := f.ts.RegisterGenerated("render-texture", 16, 8)
	require.NoError(t, err)
	assert.NotEqual(t, tex.Name, other.Name)

	got, ok := f.ts.Get(tex.Name)
	assert.True(t, ok)
	assert.Same(t, tex, got)

	_, err = f.ts.RegisterGenerated("empty", 0, 4)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	f := newTextureFixture(t, 4)
	tex := &metadata.Texture{Width: 1, Height: 1}
	require.NoError(t, f.ts.Register("custom", tex))
	assert.Equal(t, "custom", tex.Name)
	assert.Error(t, f.ts.Register("custom", &metadata.Texture{}))
	assert.Error(t, f.ts.Register(metadata.DEFAULT_TEXTURE_NAME, &metadata.Texture{}))
	assert.ErrorIs(t, f.ts.Register("nil", nil), core.ErrNilResource)

	require.NoError(t, f.ts.Shutdown())
	assert.Equal(t, 0, f.ts.Count())
	assert.Nil(t, f.ts.DefaultTexture())
}
