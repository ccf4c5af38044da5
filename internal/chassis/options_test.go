package chassis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chassis-run/chassis/pkg/sdk"
)

func boolOpt(name, short string, target *bool) *Option {
	return &Option{Name: name, Short: short, Kind: KindFlag, BoolVal: target, Help: name}
}

func strOpt(name string, target *string) *Option {
	return &Option{Name: name, Kind: KindString, StrVal: target, Help: name}
}

func TestRegistry_AddGroup_DuplicateAcrossGroups(t *testing.T) {
	reg := NewRegistry()

	var v1, v2 bool
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{boolOpt("verbose", "", &v1)}))

	err := reg.AddGroup("proxy", "proxy options", []*Option{boolOpt("verbose", "", &v2)})
	require.Error(t, err)

	var dup *DuplicateOptionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "verbose", dup.Name)
	assert.Equal(t, "base", dup.Group)

	// The registry must be left exactly as before the failed call.
	assert.Len(t, reg.Groups(), 1)
	assert.Nil(t, reg.Group("proxy"))
	assert.NotNil(t, reg.Group("base").Lookup("verbose"))
}

func TestRegistry_AddGroup_DuplicateWithinGroup(t *testing.T) {
	reg := NewRegistry()

	var a, b bool
	err := reg.AddGroup("base", "base options", []*Option{
		boolOpt("verbose", "", &a),
		boolOpt("verbose", "", &b),
	})
	var dup *DuplicateOptionError
	require.ErrorAs(t, err, &dup)
	assert.Empty(t, reg.Groups())
}

func TestRegistry_AddGroup_RejectsBadDescriptors(t *testing.T) {
	reg := NewRegistry()

	err := reg.AddGroup("base", "base options", []*Option{
		{Name: "broken", Kind: KindString}, // no target slot
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var v bool
	err = reg.AddGroup("base", "base options", []*Option{
		{Name: "flag", Short: "xy", Kind: KindFlag, BoolVal: &v},
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRegistry_Parse_TolerantThenStrict(t *testing.T) {
	reg := NewRegistry()
	var name string
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{strOpt("name", &name)}))

	argv := []string{"--future-option=1", "--name=first"}

	// Tolerant pass: the unknown option is skipped, the known one applies.
	_, err := reg.Parse(argv, false)
	require.NoError(t, err)
	assert.Equal(t, "first", name)
	assert.True(t, reg.SetFromCommandLine("name"))
	assert.False(t, reg.SetFromCommandLine("future-option"))

	// Strict pass: same argv is now fatal and the error names the option.
	_, err = reg.Parse(argv, true)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "future-option", perr.Option)
}

func TestRegistry_Parse_ErrorNamesShorthand(t *testing.T) {
	reg := NewRegistry()
	var name string
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{strOpt("name", &name)}))

	_, err := reg.Parse([]string{"-Z"}, true)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Z", perr.Option)
}

func TestRegistry_Parse_LastOccurrenceWins(t *testing.T) {
	reg := NewRegistry()
	var name string
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{strOpt("name", &name)}))

	_, err := reg.Parse([]string{"--name=a", "--name=b"}, true)
	require.NoError(t, err)
	assert.Equal(t, "b", name)
}

func TestRegistry_Parse_ListOptionsAppend(t *testing.T) {
	reg := NewRegistry()
	var list []string
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{
		{Name: "plugins", Kind: KindStringList, ListVal: &list, Help: "plugins"},
	}))

	_, err := reg.Parse([]string{"--plugins=admin,proxy", "--plugins=debug"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "proxy", "debug"}, list)
}

func TestRegistry_Parse_ShortFlags(t *testing.T) {
	reg := NewRegistry()
	var showVersion bool
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{
		boolOpt("version", "V", &showVersion),
	}))

	_, err := reg.Parse([]string{"-V"}, true)
	require.NoError(t, err)
	assert.True(t, showVersion)
}

func TestRegistry_Parse_ValueSurvivesReparse(t *testing.T) {
	// A value written by the keyfile overlay must survive a later pass that
	// does not mention the option on argv.
	reg := NewRegistry()
	var name string
	require.NoError(t, reg.AddGroup("base", "base options", []*Option{strOpt("name", &name)}))

	_, err := reg.Parse([]string{}, false)
	require.NoError(t, err)

	name = "from-config"
	_, err = reg.Parse([]string{}, true)
	require.NoError(t, err)
	assert.Equal(t, "from-config", name)
}

func TestGroup_ResolvePaths(t *testing.T) {
	rel := "etc/conf"
	abs := "/abs/conf"
	empty := ""
	plain := "not-a-path"

	g := &Group{Name: "base", Options: []*Option{
		{Name: "conf", Kind: KindFilename, StrVal: &rel},
		{Name: "abs-conf", Kind: KindFilename, StrVal: &abs},
		{Name: "unset", Kind: KindFilename, StrVal: &empty},
		{Name: "plain", Kind: KindString, StrVal: &plain},
	}}
	g.ResolvePaths("/opt/x")

	assert.Equal(t, "/opt/x/etc/conf", rel)
	assert.Equal(t, "/abs/conf", abs)
	assert.Equal(t, "", empty)
	assert.Equal(t, "not-a-path", plain, "only filename options are rewritten")
}

func TestOptionsFromSpecs(t *testing.T) {
	opts, err := OptionsFromSpecs("echo", []sdk.OptionSpec{
		{LongName: "echo-address", Kind: sdk.KindString, Default: ":4040"},
		{LongName: "echo-verbose", Kind: sdk.KindFlag},
		{LongName: "echo-workers", Kind: sdk.KindInt, Default: "4"},
		{LongName: "echo-script", Kind: sdk.KindFilename},
		{LongName: "echo-backends", Kind: sdk.KindStringList, Default: "a,b"},
	})
	require.NoError(t, err)
	require.Len(t, opts, 5)

	assert.Equal(t, ":4040", *opts[0].StrVal)
	assert.False(t, *opts[1].BoolVal)
	assert.Equal(t, 4, *opts[2].IntVal)
	assert.Equal(t, KindFilename, opts[3].Kind)
	assert.Equal(t, []string{"a", "b"}, *opts[4].ListVal)
}

func TestOptionsFromSpecs_BadInput(t *testing.T) {
	_, err := OptionsFromSpecs("echo", []sdk.OptionSpec{
		{LongName: "echo-workers", Kind: sdk.KindInt, Default: "many"},
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = OptionsFromSpecs("echo", []sdk.OptionSpec{
		{LongName: "echo-thing", Kind: sdk.OptionKind("tuple")},
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRegistry_Usage(t *testing.T) {
	reg := NewRegistry()
	var name string
	require.NoError(t, reg.AddGroup("base", "chassis options", []*Option{strOpt("name", &name)}))

	usage := reg.Usage()
	assert.Contains(t, usage, "chassis options:")
	assert.Contains(t, usage, "--name")
}
