package chassis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chassis.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	// WriteFile is subject to the umask, chmod to the exact mode under test.
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestOpenKeyFile_Basic(t *testing.T) {
	path := writeConfigFile(t, `
[chassis]
basedir = /opt/x
plugins = admin, proxy

[echo-module]
echo-address = :4040
`, 0600)

	kf, err := OpenKeyFile(path, "")
	require.NoError(t, err)

	v, ok := kf.Lookup("chassis", "basedir")
	require.True(t, ok)
	assert.Equal(t, "/opt/x", v)

	list, ok := kf.List("chassis", "plugins")
	require.True(t, ok)
	assert.Equal(t, []string{"admin", "proxy"}, list)

	v, ok = kf.Lookup("echo-module", "echo-address")
	require.True(t, ok)
	assert.Equal(t, ":4040", v)

	_, ok = kf.Lookup("chassis", "missing")
	assert.False(t, ok)
	_, ok = kf.Lookup("missing-section", "basedir")
	assert.False(t, ok)
}

func TestOpenKeyFile_CustomListSeparator(t *testing.T) {
	path := writeConfigFile(t, "[chassis]\nplugins = a;b; c\n", 0600)

	kf, err := OpenKeyFile(path, ";")
	require.NoError(t, err)

	list, ok := kf.List("chassis", "plugins")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, list)
}

func TestOpenKeyFile_WorldWritableRejected(t *testing.T) {
	path := writeConfigFile(t, "[chassis]\nbasedir = /opt/x\n", 0666)

	kf, err := OpenKeyFile(path, "")
	assert.ErrorIs(t, err, ErrUnsafePermissions)
	assert.Nil(t, kf, "no mapping may escape a failed permission check")
}

func TestOpenKeyFile_GroupWritableRejected(t *testing.T) {
	path := writeConfigFile(t, "[chassis]\nbasedir = /opt/x\n", 0620)

	_, err := OpenKeyFile(path, "")
	assert.ErrorIs(t, err, ErrUnsafePermissions)
}

func TestOpenKeyFile_MissingFile(t *testing.T) {
	_, err := OpenKeyFile(filepath.Join(t.TempDir(), "absent.conf"), "")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestOpenKeyFile_MalformedSyntax(t *testing.T) {
	path := writeConfigFile(t, "[unclosed\nkey = value\n", 0600)

	kf, err := OpenKeyFile(path, "")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Nil(t, kf)
}

func TestKeyFile_Apply_RespectsCommandLine(t *testing.T) {
	path := writeConfigFile(t, `
[chassis]
basedir = /opt/x
log-level = debug
`, 0600)

	kf, err := OpenKeyFile(path, "")
	require.NoError(t, err)

	reg := NewRegistry()
	var basedir, logLevel string
	require.NoError(t, reg.AddGroup("chassis", "chassis options", []*Option{
		strOpt("basedir", &basedir),
		strOpt("log-level", &logLevel),
	}))

	_, err = reg.Parse([]string{"--basedir=/opt/y"}, true)
	require.NoError(t, err)

	require.NoError(t, kf.Apply(reg, reg.Group("chassis"), "chassis"))

	assert.Equal(t, "/opt/y", basedir, "command line wins over the config file")
	assert.Equal(t, "debug", logLevel, "config file fills options not on argv")
}

func TestKeyFile_Apply_TypedValues(t *testing.T) {
	path := writeConfigFile(t, `
[echo-module]
echo-verbose = true
echo-workers = 8
echo-backends = x,y
`, 0600)

	kf, err := OpenKeyFile(path, "")
	require.NoError(t, err)

	reg := NewRegistry()
	var verbose bool
	var workers int
	var backends []string
	require.NoError(t, reg.AddGroup("echo", "echo options", []*Option{
		{Name: "echo-verbose", Kind: KindFlag, BoolVal: &verbose},
		{Name: "echo-workers", Kind: KindInt, IntVal: &workers},
		{Name: "echo-backends", Kind: KindStringList, ListVal: &backends},
	}))
	_, err = reg.Parse(nil, true)
	require.NoError(t, err)

	require.NoError(t, kf.Apply(reg, reg.Group("echo"), "echo-module"))
	assert.True(t, verbose)
	assert.Equal(t, 8, workers)
	assert.Equal(t, []string{"x", "y"}, backends)
}

func TestKeyFile_Apply_BadTypedValue(t *testing.T) {
	path := writeConfigFile(t, "[echo-module]\necho-workers = many\n", 0600)

	kf, err := OpenKeyFile(path, "")
	require.NoError(t, err)

	reg := NewRegistry()
	var workers int
	require.NoError(t, reg.AddGroup("echo", "echo options", []*Option{
		{Name: "echo-workers", Kind: KindInt, IntVal: &workers},
	}))
	_, err = reg.Parse(nil, true)
	require.NoError(t, err)

	err = kf.Apply(reg, reg.Group("echo"), "echo-module")
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestPluginSection(t *testing.T) {
	assert.Equal(t, "echo-module", PluginSection("echo"))
}
