package systems

import (
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-blend/engine/renderer/renderertest"
)

func newManagerFixture(t *testing.T, watch bool) (*SystemManager, string) {
	core.SetLogOutput(io.Discard)
	cfg := core.DefaultConfig()
	cfg.Assets.BaseDir = t.TempDir()
	cfg.Assets.Watch = watch
	writeImage(t, filepath.Join(cfg.Assets.BaseDir, "hero.png"), 1, 1, color.NRGBA{R: 255, A: 255})

	r := renderer.New(renderertest.NewBackend())
	require.NoError(t, r.Initialize("test", 8, 8))
	sm, err := NewSystemManager(cfg, r)
	require.NoError(t, err)
	require.NoError(t, sm.Initialize())
	t.Cleanup(func() { _ = sm.Shutdown() })
	return sm, cfg.Assets.BaseDir
}

func TestSystemManagerWiring(t *testing.T) {
	sm, _ := newManagerFixture(t, false)

	require.NotNil(t, sm.TextureSystem().DefaultTexture())
	_, err := sm.ShaderSystem().GetShader(metadata.ShaderPositionTextureColor)
	require.NoError(t, err)
	assert.True(t, sm.AssetManager().Has("hero.png"))

	var got *metadata.Texture
	require.NoError(t, sm.TextureSystem().AcquireAsync("hero.png", false, func(tex *metadata.Texture) { got = tex }))
	assert.Eventually(t, func() bool {
		sm.Update()
		return got != nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "hero.png", got.Name)
}

func TestSystemManagerRejectsBadJobConfig(t *testing.T) {
	core.SetLogOutput(io.Discard)
	cfg := core.DefaultConfig()
	cfg.Jobs.Workers = 0
	_, err := NewSystemManager(cfg, renderer.New(renderertest.NewBackend()))
	assert.ErrorIs(t, err, ErrNoWorkers)
}

func TestModifiedImageIsReloaded(t *testing.T) {
	sm, dir := newManagerFixture(t, true)
	tex, err := sm.TextureSystem().Acquire("hero.png", false)
	require.NoError(t, err)
	require.Equal(t, []uint8{255, 0, 0, 255}, tex.InternalData.([]uint8))

	// write elsewhere and rename so the watcher never sees a half-written file
	staging := filepath.Join(t.TempDir(), "hero.png")
	writeImage(t, staging, 1, 1, color.NRGBA{G: 255, A: 255})
	require.NoError(t, os.Rename(staging, filepath.Join(dir, "hero.png")))

	assert.Eventually(t, func() bool {
		sm.Update()
		return tex.InternalData.([]uint8)[1] == 255
	}, 5*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, tex.Generation, uint32(1))
}
