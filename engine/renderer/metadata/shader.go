package metadata

import "fmt"

// Built-in program names.
const (
	ShaderPositionTextureColor        = "Shader.Builtin.PositionTextureColor"
	ShaderPositionLengthTextureColor  = "Shader.Builtin.PositionLengthTextureColor"
	ShaderPositionColorTexAsPointSize = "Shader.Builtin.PositionColorTexAsPointSize"
	ShaderRadialBlur                  = "Shader.Builtin.RadialBlur"
)

// BuiltinShaders lists every program the shader system creates at startup.
var BuiltinShaders = []ShaderConfig{
	{Name: ShaderPositionTextureColor, Uniforms: []ShaderUniformConfig{{Name: "u_texture", Type: ShaderUniformTypeSampler}}},
	{Name: ShaderPositionLengthTextureColor},
	{Name: ShaderPositionColorTexAsPointSize},
	{Name: ShaderRadialBlur, Uniforms: []ShaderUniformConfig{
		{Name: "u_texture", Type: ShaderUniformTypeSampler},
		{Name: "u_rate", Type: ShaderUniformTypeFloat32},
	}},
}

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader is created and ready for use.*/
	SHADER_STATE_INITIALIZED
)

type ShaderUniformType int

const (
	ShaderUniformTypeFloat32 ShaderUniformType = iota
	ShaderUniformTypeFloat32_4
	ShaderUniformTypeMatrix4
	ShaderUniformTypeSampler
)

type ShaderUniformConfig struct {
	Name string
	Type ShaderUniformType
}

type ShaderConfig struct {
	Name     string
	Uniforms []ShaderUniformConfig
}

/**
 * @brief Represents a shader on the frontend.
 */
type Shader struct {
	/** @brief The shader identifier */
	ID    uint32
	Name  string
	State ShaderState
	/** @brief Uniform types by name. */
	Uniforms map[string]ShaderUniformType
	/** @brief Backend program data. */
	InternalData interface{}
}

func NewShader(id uint32, config ShaderConfig) *Shader {
	s := &Shader{
		ID:       id,
		Name:     config.Name,
		State:    SHADER_STATE_NOT_CREATED,
		Uniforms: make(map[string]ShaderUniformType, len(config.Uniforms)),
	}
	for _, u := range config.Uniforms {
		s.Uniforms[u.Name] = u.Type
	}
	return s
}

// CheckUniform verifies a value matches the declared uniform type.
func (s *Shader) CheckUniform(name string, value interface{}) error {
	t, ok := s.Uniforms[name]
	if !ok {
		return fmt.Errorf("shader '%s' has no uniform '%s'", s.Name, name)
	}
	switch t {
	case ShaderUniformTypeFloat32:
		if _, ok := value.(float32); !ok {
			return fmt.Errorf("uniform '%s' expects float32, got %T", name, value)
		}
	case ShaderUniformTypeSampler:
		if _, ok := value.(*Texture); !ok {
			return fmt.Errorf("uniform '%s' expects *Texture, got %T", name, value)
		}
	}
	return nil
}
