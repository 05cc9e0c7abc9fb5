package systems

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-blend/engine/renderer/software"
)

func newShaderSystem(t *testing.T, max uint16) *ShaderSystem {
	core.SetLogOutput(io.Discard)
	r := renderer.New(software.New())
	require.NoError(t, r.Initialize("test", 4, 4))
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: max}, r)
	require.NoError(t, err)
	return ss
}

func TestBuiltinShaders(t *testing.T) {
	ss := newShaderSystem(t, 8)
	require.NoError(t, ss.Initialize())

	for _, name := range []string{
		metadata.ShaderPositionTextureColor,
		metadata.ShaderPositionLengthTextureColor,
		metadata.ShaderPositionColorTexAsPointSize,
		metadata.ShaderRadialBlur,
	} {
		sh, err := ss.GetShader(name)
		require.NoError(t, err, name)
		assert.Equal(t, metadata.SHADER_STATE_INITIALIZED, sh.State)
		assert.Equal(t, sh.ID, ss.GetShaderID(name))
	}

	_, err := ss.GetShader("Shader.Custom.Missing")
	assert.ErrorIs(t, err, core.ErrUnknownShader)
	assert.Equal(t, metadata.InvalidID, ss.GetShaderID("Shader.Custom.Missing"))
	_, err = ss.GetShaderByID(99)
	assert.Error(t, err)

	require.NoError(t, ss.Shutdown())
	_, err = ss.GetShader(metadata.ShaderRadialBlur)
	assert.ErrorIs(t, err, core.ErrUnknownShader)
}

func TestCreateShaderErrors(t *testing.T) {
	ss := newShaderSystem(t, 1)
	_, err := ss.CreateShader(&metadata.ShaderConfig{Name: metadata.ShaderPositionTextureColor})
	require.NoError(t, err)

	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: metadata.ShaderPositionTextureColor})
	assert.Error(t, err, "duplicate name")
	_, err = ss.CreateShader(&metadata.ShaderConfig{Name: metadata.ShaderRadialBlur})
	assert.Error(t, err, "no slot left")
	_, err = ss.CreateShader(&metadata.ShaderConfig{})
	assert.Error(t, err, "empty name")

	big := newShaderSystem(t, 4)
	_, err = big.CreateShader(&metadata.ShaderConfig{Name: "Shader.Custom.Toon"})
	assert.ErrorIs(t, err, core.ErrUnknownShader, "the software backend has no such program")
}

func TestValidateCommands(t *testing.T) {
	ss := newShaderSystem(t, 8)
	require.NoError(t, ss.Initialize())

	good := &metadata.RenderCommand{
		Shader:   metadata.ShaderRadialBlur,
		Uniforms: map[string]interface{}{"u_rate": float32(0.5), "u_texture": &metadata.Texture{}},
	}
	assert.NoError(t, ss.ValidateCommands([]*metadata.RenderCommand{good}))

	wrongType := &metadata.RenderCommand{
		Shader:   metadata.ShaderRadialBlur,
		Uniforms: map[string]interface{}{"u_rate": 0.5},
	}
	undeclared := &metadata.RenderCommand{
		Shader:   metadata.ShaderPositionColorTexAsPointSize,
		Uniforms: map[string]interface{}{"u_rate": float32(1)},
	}
	unknown := &metadata.RenderCommand{Shader: "Shader.Custom.Missing"}

	err := ss.ValidateCommands([]*metadata.RenderCommand{good, wrongType, undeclared, unknown})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownShader)
	assert.Contains(t, err.Error(), "expects float32")
	assert.Contains(t, err.Error(), "has no uniform 'u_rate'")
}
