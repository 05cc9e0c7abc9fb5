package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->id
	Lookup map[string]uint32
	// A collection of created shaders, indexed by id.
	Shaders []*metadata.Shader
	// sub systems
	renderer *renderer.Renderer
}

func NewShaderSystem(config *ShaderSystemConfig, r *renderer.Renderer) (*ShaderSystem, error) {
	if config == nil || config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	if r == nil {
		err := fmt.Errorf("NewShaderSystem - renderer: %w", core.ErrNilResource)
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		Config:   config,
		Shaders:  make([]*metadata.Shader, 0, config.MaxShaderCount),
		Lookup:   make(map[string]uint32),
		renderer: r,
	}, nil
}

// Initialize creates the built-in programs.
func (shaderSystem *ShaderSystem) Initialize() error {
	for i := range metadata.BuiltinShaders {
		if _, err := shaderSystem.CreateShader(&metadata.BuiltinShaders[i]); err != nil {
			return err
		}
	}
	return nil
}

/**
 * @brief Shuts down the shader system, destroying every created shader.
 */
func (shaderSystem *ShaderSystem) Shutdown() error {
	for _, sh := range shaderSystem.Shaders {
		if sh.State == metadata.SHADER_STATE_INITIALIZED {
			shaderSystem.renderer.ShaderDestroy(sh)
		}
		sh.State = metadata.SHADER_STATE_NOT_CREATED
	}
	shaderSystem.Shaders = shaderSystem.Shaders[:0]
	shaderSystem.Lookup = make(map[string]uint32)
	return nil
}

/**
 * @brief Creates a new shader with the given config.
 *
 * @param config The configuration to be used when creating the shader.
 * @return The created shader, or an error when the name is taken or no slot is left.
 */
func (shaderSystem *ShaderSystem) CreateShader(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	if config == nil || config.Name == "" {
		err := fmt.Errorf("CreateShader - a shader needs a name")
		core.LogError(err.Error())
		return nil, err
	}
	if _, exists := shaderSystem.Lookup[config.Name]; exists {
		err := fmt.Errorf("shader '%s' already exists", config.Name)
		core.LogError(err.Error())
		return nil, err
	}
	if len(shaderSystem.Shaders) >= int(shaderSystem.Config.MaxShaderCount) {
		err := fmt.Errorf("unable to find free slot to create new shader '%s'. Aborting", config.Name)
		core.LogError(err.Error())
		return nil, err
	}

	id := uint32(len(shaderSystem.Shaders))
	shader := metadata.NewShader(id, *config)
	if err := shaderSystem.renderer.ShaderCreate(shader); err != nil {
		core.LogError("error creating shader '%s': %s", config.Name, err.Error())
		return nil, err
	}
	shaderSystem.Shaders = append(shaderSystem.Shaders, shader)
	shaderSystem.Lookup[config.Name] = id
	return shader, nil
}

/**
 * @brief Gets the identifier of a shader by name.
 *
 * @param shaderName The name of the shader.
 * @return The shader id, if found; otherwise InvalidID.
 */
func (shaderSystem *ShaderSystem) GetShaderID(shaderName string) uint32 {
	if id, ok := shaderSystem.Lookup[shaderName]; ok {
		return id
	}
	return metadata.InvalidID
}

func (shaderSystem *ShaderSystem) GetShaderByID(shaderID uint32) (*metadata.Shader, error) {
	if shaderID >= uint32(len(shaderSystem.Shaders)) {
		return nil, fmt.Errorf("shader with ID `%d` not found", shaderID)
	}
	return shaderSystem.Shaders[shaderID], nil
}

/**
 * @brief Returns the shader with the given name. Case sensitive.
 */
func (shaderSystem *ShaderSystem) GetShader(shaderName string) (*metadata.Shader, error) {
	id := shaderSystem.GetShaderID(shaderName)
	if id == metadata.InvalidID {
		return nil, fmt.Errorf("shader `%s`: %w", shaderName, core.ErrUnknownShader)
	}
	return shaderSystem.GetShaderByID(id)
}

/**
 * @brief Checks queued commands against the shaders they name: the program
 * must exist and every uniform must match its declared type. All problems
 * are joined into the returned error.
 */
func (shaderSystem *ShaderSystem) ValidateCommands(commands []*metadata.RenderCommand) error {
	var errs []error
	for _, c := range commands {
		shader, err := shaderSystem.GetShader(c.Shader)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for name, value := range c.Uniforms {
			if err := shader.CheckUniform(name, value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
