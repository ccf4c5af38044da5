package chassis

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultListSeparator splits list-valued keyfile entries.
const DefaultListSeparator = ","

// Keyfile section conventions: base options live in [chassis], a plugin's
// options in [<plugin-name>-module].
const (
	BaseSection         = "chassis"
	PluginSectionSuffix = "-module"
)

// PluginSection returns the keyfile section name for a plugin.
func PluginSection(pluginName string) string {
	return pluginName + PluginSectionSuffix
}

// KeyFile is the parsed configuration file: a section-keyed mapping of string
// values. It is read once during bootstrap and never mutated afterwards.
type KeyFile struct {
	file    *ini.File
	path    string
	listSep string
}

// OpenKeyFile checks the file's permissions and parses it. A file writable by
// group or world is rejected before any content is read; a parse failure
// returns no mapping at all.
func OpenKeyFile(path, listSep string) (*KeyFile, error) {
	if err := CheckFileMode(path); err != nil {
		return nil, err
	}
	if listSep == "" {
		listSep = DefaultListSeparator
	}

	// Inline comments are not part of the keyfile format; a separator like
	// ";" must survive inside values.
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, &ParseError{Option: path, Reason: err.Error()}
	}

	return &KeyFile{file: f, path: path, listSep: listSep}, nil
}

// Path returns the file the mapping was loaded from.
func (k *KeyFile) Path() string {
	return k.path
}

// Lookup returns the raw value of key in section.
func (k *KeyFile) Lookup(section, key string) (string, bool) {
	s, err := k.file.GetSection(section)
	if err != nil || !s.HasKey(key) {
		return "", false
	}
	return s.Key(key).String(), true
}

// List returns a list-valued entry split on the configured separator, with
// whitespace around each element trimmed. Empty elements are preserved; the
// plugin loader treats them as "nothing requested".
func (k *KeyFile) List(section, key string) ([]string, bool) {
	raw, ok := k.Lookup(section, key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(raw, k.listSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, true
}

// Apply copies values from section into every option of the group that the
// most recent argument parse did not see on the command line. A value
// supplied on the command line is never overwritten.
func (k *KeyFile) Apply(r *Registry, g *Group, section string) error {
	for _, o := range g.Options {
		if r.SetFromCommandLine(o.Name) {
			continue
		}

		switch o.Kind {
		case KindFlag:
			raw, ok := k.Lookup(section, o.Name)
			if !ok {
				continue
			}
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return &ParseError{Option: o.Name, Reason: fmt.Sprintf("%s: invalid boolean %q", k.path, raw)}
			}
			*o.BoolVal = v
		case KindString, KindFilename:
			raw, ok := k.Lookup(section, o.Name)
			if !ok {
				continue
			}
			*o.StrVal = raw
		case KindInt:
			raw, ok := k.Lookup(section, o.Name)
			if !ok {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				return &ParseError{Option: o.Name, Reason: fmt.Sprintf("%s: invalid integer %q", k.path, raw)}
			}
			*o.IntVal = v
		case KindStringList:
			list, ok := k.List(section, o.Name)
			if !ok {
				continue
			}
			*o.ListVal = list
		}
	}
	return nil
}
