package systems

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-blend/engine/assets"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

/**
 * @brief Caches textures by file name or registered key, with reference
 * counting. Files that fail to load resolve to the 2x2 white default.
 */
type TextureSystem struct {
	Config         *TextureSystemConfig
	defaultTexture *metadata.Texture
	textures       map[string]*metadata.Texture
	references     map[string]*metadata.TextureReference
	// sub systems
	jobSystem    *JobSystem
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, am *assets.AssetManager, r *renderer.Renderer) (*TextureSystem, error) {
	if config == nil || config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if r == nil {
		err := fmt.Errorf("func NewTextureSystem - renderer: %w", core.ErrNilResource)
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureSystem{
		Config:       config,
		textures:     make(map[string]*metadata.Texture),
		references:   make(map[string]*metadata.TextureReference),
		jobSystem:    js,
		assetManager: am,
		renderer:     r,
	}, nil
}

func (ts *TextureSystem) Initialize() error {
	tex, pixels := metadata.NewDefaultTexturePixels()
	if err := ts.renderer.TextureCreate(pixels, tex); err != nil {
		core.LogError("failed to create the default texture: %s", err.Error())
		return err
	}
	bumpGeneration(tex)
	ts.defaultTexture = tex
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	for name, t := range ts.textures {
		ts.renderer.TextureDestroy(t)
		ts.unregister(name)
	}
	if ts.defaultTexture != nil {
		ts.renderer.TextureDestroy(ts.defaultTexture)
		ts.defaultTexture = nil
	}
	return nil
}

// DefaultTexture is the opaque white fallback.
func (ts *TextureSystem) DefaultTexture() *metadata.Texture {
	return ts.defaultTexture
}

// Count returns how many textures are registered, the default excluded.
func (ts *TextureSystem) Count() int {
	return len(ts.textures)
}

// Get returns a registered texture without touching its reference count.
func (ts *TextureSystem) Get(name string) (*metadata.Texture, bool) {
	t, ok := ts.textures[name]
	return t, ok
}

/**
 * @brief Returns the texture loaded from name, loading it on first use.
 * A file that cannot be loaded yields the default texture and a warning.
 * @param autoRelease destroy the texture once its last reference is released.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("texture system Acquire called for the default texture. Use DefaultTexture for texture 'default'")
		return ts.defaultTexture, nil
	}
	if t, ok := ts.textures[name]; ok {
		ts.references[name].ReferenceCount++
		return t, nil
	}
	if err := ts.checkCapacity(); err != nil {
		return nil, err
	}
	if ts.assetManager == nil {
		core.LogWarn("texture '%s' requested without an asset manager, using default", name)
		return ts.defaultTexture, nil
	}

	res, err := ts.loadImage(name)
	if err != nil {
		core.LogWarn("texture '%s' could not be loaded, using default: %s", name, err.Error())
		return ts.defaultTexture, nil
	}
	defer ts.assetManager.UnloadAsset(res)

	data := res.Data.(*metadata.ImageResourceData)
	tex := newImageTexture(name, data)
	if err := ts.renderer.TextureCreate(data.Pixels, tex); err != nil {
		core.LogError("texture '%s' upload failed: %s", name, err.Error())
		return nil, err
	}
	bumpGeneration(tex)
	ts.register(name, tex, autoRelease)
	return tex, nil
}

/**
 * @brief Loads name on the job system and calls done with the result on
 * the update goroutine. The default texture is handed over when the
 * load fails. Already registered textures complete immediately.
 */
func (ts *TextureSystem) AcquireAsync(name string, autoRelease bool, done func(*metadata.Texture)) error {
	if t, ok := ts.textures[name]; ok {
		ts.references[name].ReferenceCount++
		if done != nil {
			done(t)
		}
		return nil
	}
	if ts.jobSystem == nil || ts.assetManager == nil {
		err := fmt.Errorf("texture system AcquireAsync: %w", core.ErrNotInitialized)
		core.LogError(err.Error())
		return err
	}
	if err := ts.checkCapacity(); err != nil {
		return err
	}

	return ts.jobSystem.Submit(metadata.JobTask{
		Name: "texture:" + name,
		InputParams: &metadata.TextureLoadParams{
			ResourceName: name,
			TempTexture:  &metadata.Texture{},
		},
		OnStart: ts.textureLoadJobStart,
		OnComplete: func(result interface{}) {
			params := result.(*metadata.TextureLoadParams)
			t := ts.textureLoadJobSuccess(params, autoRelease)
			if done != nil {
				done(t)
			}
		},
		OnFailure: func(err error) {
			core.LogWarn("texture '%s' could not be loaded, using default: %s", name, err.Error())
			if done != nil {
				done(ts.defaultTexture)
			}
		},
	})
}

// textureLoadJobStart decodes the image on a worker goroutine. No renderer calls happen here.
func (ts *TextureSystem) textureLoadJobStart(params interface{}) (interface{}, error) {
	loadParams := params.(*metadata.TextureLoadParams)
	res, err := ts.loadImage(loadParams.ResourceName)
	if err != nil {
		return nil, err
	}
	data := res.Data.(*metadata.ImageResourceData)
	loadParams.Image = data
	*loadParams.TempTexture = *newImageTexture(loadParams.ResourceName, data)
	core.LogDebug("texture '%s' decoded (%dx%d)", loadParams.ResourceName, data.Width, data.Height)
	return loadParams, nil
}

// textureLoadJobSuccess uploads the decoded pixels. A texture registered in
// the meantime under the same name is reused rather than duplicated.
func (ts *TextureSystem) textureLoadJobSuccess(params *metadata.TextureLoadParams, autoRelease bool) *metadata.Texture {
	name := params.ResourceName
	if t, ok := ts.textures[name]; ok {
		ts.references[name].ReferenceCount++
		return t
	}
	tex := params.TempTexture
	if err := ts.renderer.TextureCreate(params.Image.Pixels, tex); err != nil {
		core.LogError("texture '%s' upload failed: %s", name, err.Error())
		return ts.defaultTexture
	}
	bumpGeneration(tex)
	ts.register(name, tex, autoRelease)
	params.OutTexture = tex
	core.LogDebug("Successfully loaded texture '%s'.", name)
	return tex
}

/**
 * @brief Re-reads a registered texture from disk and replaces its pixels in
 * place, so everything holding the pointer sees the new image and its
 * generation moves on.
 */
func (ts *TextureSystem) Reload(name string) error {
	tex, ok := ts.textures[name]
	if !ok {
		return fmt.Errorf("texture '%s': %w", name, core.ErrTextureNotLoaded)
	}
	if ts.assetManager == nil {
		return fmt.Errorf("texture system Reload: %w", core.ErrNotInitialized)
	}
	res, err := ts.loadImage(name)
	if err != nil {
		return err
	}
	defer ts.assetManager.UnloadAsset(res)

	data := res.Data.(*metadata.ImageResourceData)
	fresh := newImageTexture(name, data)
	if fresh.Width != tex.Width || fresh.Height != tex.Height {
		// size changed: the backend storage has to be recreated
		ts.renderer.TextureDestroy(tex)
		tex.Width, tex.Height, tex.Flags = fresh.Width, fresh.Height, fresh.Flags
		if err := ts.renderer.TextureCreate(data.Pixels, tex); err != nil {
			return err
		}
	} else {
		tex.Flags = fresh.Flags
		if err := ts.renderer.TextureWriteData(tex, data.Pixels); err != nil {
			return err
		}
	}
	bumpGeneration(tex)
	core.LogInfo("texture '%s' reloaded (generation %d)", name, tex.Generation)
	return nil
}

/**
 * @brief Registers an already created texture under key. The texture is
 * never auto-released.
 */
func (ts *TextureSystem) Register(key string, tex *metadata.Texture) error {
	if tex == nil {
		return fmt.Errorf("texture register '%s': %w", key, core.ErrNilResource)
	}
	if key == "" || key == metadata.DEFAULT_TEXTURE_NAME {
		return fmt.Errorf("texture register: invalid key '%s'", key)
	}
	if _, exists := ts.textures[key]; exists {
		return fmt.Errorf("texture '%s' is already registered", key)
	}
	if err := ts.checkCapacity(); err != nil {
		return err
	}
	tex.Name = key
	ts.register(key, tex, false)
	return nil
}

// RegisterGenerated creates a writeable width x height texture under a fresh
// "<prefix>-<uuid>" key.
func (ts *TextureSystem) RegisterGenerated(prefix string, width, height uint32) (*metadata.Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("generated texture must be at least 1x1, got %dx%d", width, height)
	}
	key := fmt.Sprintf("%s-%s", strings.TrimSuffix(prefix, "-"), uuid.NewString())
	tex := &metadata.Texture{
		Name:         key,
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Generation:   metadata.InvalidID,
		Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable | metadata.TextureFlagHasTransparency | metadata.TextureFlagPremultipliedAlpha),
	}
	if err := ts.renderer.TextureCreateWriteable(tex); err != nil {
		return nil, err
	}
	bumpGeneration(tex)
	if err := ts.Register(key, tex); err != nil {
		ts.renderer.TextureDestroy(tex)
		return nil, err
	}
	return tex, nil
}

/**
 * @brief Drops one reference. Auto-release textures are destroyed with their
 * last reference; others stay cached at zero references.
 */
func (ts *TextureSystem) Release(name string) {
	ref, ok := ts.references[name]
	if !ok {
		core.LogWarn("Tried to release non-existent texture: '%s'", name)
		return
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release texture '%s' whose reference count was already 0", name)
		return
	}
	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ts.renderer.TextureDestroy(ts.textures[name])
		ts.unregister(name)
		core.LogDebug("Released texture '%s', unloaded because reference count=0 and AutoRelease=true.", name)
	}
}

// References returns the reference count of name, 0 when unknown.
func (ts *TextureSystem) References(name string) uint64 {
	if ref, ok := ts.references[name]; ok {
		return ref.ReferenceCount
	}
	return 0
}

func (ts *TextureSystem) register(name string, tex *metadata.Texture, autoRelease bool) {
	ts.textures[name] = tex
	ts.references[name] = &metadata.TextureReference{
		ReferenceCount: 1,
		Handle:         core.IdentifierAquireNewID(tex),
		AutoRelease:    autoRelease,
	}
}

func (ts *TextureSystem) unregister(name string) {
	if ref, ok := ts.references[name]; ok {
		if err := core.IdentifierReleaseID(ref.Handle); err != nil {
			core.LogWarn(err.Error())
		}
	}
	delete(ts.textures, name)
	delete(ts.references, name)
}

// Handle returns the identifier assigned to a registered texture.
func (ts *TextureSystem) Handle(name string) (uint32, bool) {
	ref, ok := ts.references[name]
	if !ok {
		return metadata.InvalidID, false
	}
	return ref.Handle, true
}

func (ts *TextureSystem) checkCapacity() error {
	if uint32(len(ts.textures)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("texture system cannot hold more than %d textures. Adjust configuration to allow more", ts.Config.MaxTextureCount)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (ts *TextureSystem) loadImage(name string) (*metadata.Resource, error) {
	return ts.assetManager.LoadAsset(name, metadata.ResourceTypeImage, &metadata.ImageResourceParams{
		Premultiply: true,
	})
}

func newImageTexture(name string, data *metadata.ImageResourceData) *metadata.Texture {
	flags := metadata.TextureFlagBits(metadata.TextureFlagPremultipliedAlpha)
	if data.HasTransparency {
		flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	return &metadata.Texture{
		Name:         name,
		Width:        data.Width,
		Height:       data.Height,
		ChannelCount: data.ChannelCount,
		Flags:        flags,
		Generation:   metadata.InvalidID,
		Filter:       metadata.TextureFilterModeNearest,
	}
}

// bumpGeneration moves a texture to its next generation; new textures start at 0.
func bumpGeneration(tex *metadata.Texture) {
	if tex.Generation == metadata.InvalidID {
		tex.Generation = 0
		return
	}
	tex.Generation++
}
