package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RunsLua(t *testing.T) {
	e := New()
	defer e.Close()

	require.NoError(t, e.DoString(`answer = 21 * 2`))
	assert.Error(t, e.DoString(`this is not lua`))
}

func TestEngine_PackagePathFromEnvironment(t *testing.T) {
	t.Setenv(EnvLuaPath, "/seeded/?.lua")

	e := New()
	defer e.Close()

	assert.Equal(t, "/seeded/?.lua", e.PackagePath())
}

func TestVersion(t *testing.T) {
	assert.Contains(t, Version(), "Lua")
}
