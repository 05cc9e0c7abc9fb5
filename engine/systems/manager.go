package systems

import (
	"github.com/spaghettifunk/anima-blend/engine/assets"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

const (
	maxTextureCount = 1024
	maxShaderCount  = 64
)

type SystemManager struct {
	jobSystem     *JobSystem
	assetManager  *assets.AssetManager
	textureSystem *TextureSystem
	shaderSystem  *ShaderSystem
}

func NewSystemManager(cfg *core.Config, r *renderer.Renderer) (*SystemManager, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	js, err := NewJobSystem(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	am, err := assets.NewAssetManager(&cfg.Assets)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: maxTextureCount,
	}, js, am, r)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: maxShaderCount,
	}, r)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		jobSystem:     js,
		assetManager:  am,
		textureSystem: ts,
		shaderSystem:  ss,
	}, nil
}

// Initialize brings the systems up in dependency order.
func (sm *SystemManager) Initialize() error {
	if err := sm.assetManager.Initialize(); err != nil {
		core.LogError("asset manager failed to initialize: %s", err.Error())
		return err
	}
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.shaderSystem.Initialize(); err != nil {
		return err
	}
	return nil
}

/**
 * @brief Runs finished job callbacks, then applies file changes reported by
 * the asset watcher: modified images that are loaded as textures are
 * reloaded in place. Returns the number of dispatched jobs.
 */
func (sm *SystemManager) Update() int {
	dispatched := sm.jobSystem.Update()
	for {
		select {
		case e := <-sm.assetManager.Changes():
			sm.onAssetChanged(e)
		default:
			return dispatched
		}
	}
}

func (sm *SystemManager) onAssetChanged(e assets.AssetEvent) {
	core.LogDebug("asset '%s' %s", e.Path, e.Op)
	if e.Type != metadata.ResourceTypeImage || e.Op == assets.AssetRemoved {
		return
	}
	if _, ok := sm.textureSystem.Get(e.Path); !ok {
		return
	}
	if err := sm.textureSystem.Reload(e.Path); err != nil {
		core.LogWarn("texture '%s' changed on disk but could not be reloaded: %s", e.Path, err.Error())
	}
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.shaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.assetManager.Shutdown(); err != nil {
		return err
	}
	return nil
}

func (sm *SystemManager) JobSystem() *JobSystem              { return sm.jobSystem }
func (sm *SystemManager) AssetManager() *assets.AssetManager { return sm.assetManager }
func (sm *SystemManager) TextureSystem() *TextureSystem      { return sm.textureSystem }
func (sm *SystemManager) ShaderSystem() *ShaderSystem        { return sm.shaderSystem }
