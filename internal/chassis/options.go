package chassis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/chassis-run/chassis/pkg/sdk"
)

// OptionKind describes how an option's argument is interpreted.
type OptionKind int

const (
	KindFlag       OptionKind = iota // boolean, no argument
	KindString                       // single string value
	KindInt                          // single integer value
	KindStringList                   // repeatable, comma separated, appends
	KindFilename                     // string holding a path, normalized against the base dir
)

// Option describes one configurable value. The target slot points into the
// configuration struct (or plugin value set) owned by the caller; the argument
// parser and the keyfile overlay both write through it.
type Option struct {
	Name        string
	Short       string // optional one-character short form
	Kind        OptionKind
	Help        string
	Placeholder string

	// Exactly one of these must be set, matching Kind.
	BoolVal *bool
	StrVal  *string
	IntVal  *int
	ListVal *[]string
}

func (o *Option) validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: option with empty long name", ErrInvalidConfig)
	}
	if len(o.Short) > 1 {
		return fmt.Errorf("%w: option --%s: short form %q must be a single character", ErrInvalidConfig, o.Name, o.Short)
	}
	ok := false
	switch o.Kind {
	case KindFlag:
		ok = o.BoolVal != nil
	case KindString, KindFilename:
		ok = o.StrVal != nil
	case KindInt:
		ok = o.IntVal != nil
	case KindStringList:
		ok = o.ListVal != nil
	}
	if !ok {
		return fmt.Errorf("%w: option --%s has no target slot for its kind", ErrInvalidConfig, o.Name)
	}
	return nil
}

// Group bundles the options contributed by one source: the base process or a
// single plugin. A plugin's group name equals the plugin name and doubles as
// the prefix of its keyfile section.
type Group struct {
	Name        string
	Description string
	Options     []*Option
}

// Lookup returns the option with the given long name, or nil.
func (g *Group) Lookup(name string) *Option {
	for _, o := range g.Options {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// String returns the current value of a string or filename option.
func (g *Group) String(name string) (string, bool) {
	if o := g.Lookup(name); o != nil && o.StrVal != nil {
		return *o.StrVal, true
	}
	return "", false
}

// Bool returns the current value of a flag option.
func (g *Group) Bool(name string) (bool, bool) {
	if o := g.Lookup(name); o != nil && o.BoolVal != nil {
		return *o.BoolVal, true
	}
	return false, false
}

// Int returns the current value of an int option.
func (g *Group) Int(name string) (int, bool) {
	if o := g.Lookup(name); o != nil && o.IntVal != nil {
		return *o.IntVal, true
	}
	return 0, false
}

// List returns the current value of a string-list option.
func (g *Group) List(name string) ([]string, bool) {
	if o := g.Lookup(name); o != nil && o.ListVal != nil {
		return *o.ListVal, true
	}
	return nil, false
}

// ResolvePaths rewrites every filename option in the group to an absolute
// path anchored at baseDir. Already-absolute and empty values are left alone.
func (g *Group) ResolvePaths(baseDir string) {
	for _, o := range g.Options {
		if o.Kind != KindFilename || o.StrVal == nil {
			continue
		}
		*o.StrVal = NormalizePath(*o.StrVal, baseDir)
	}
}

// Registry is the ordered collection of option groups known to the parser.
// It starts with the base group and grows as plugins are discovered.
type Registry struct {
	groups  []*Group
	fromCLI map[string]bool // long names seen on argv in the most recent parse
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fromCLI: make(map[string]bool)}
}

// AddGroup registers a named group of options. Long names must be unique
// across the entire registry; on any collision or malformed descriptor the
// registry is left exactly as it was before the call.
func (r *Registry) AddGroup(name, description string, opts []*Option) error {
	owner := make(map[string]string)
	for _, g := range r.groups {
		for _, o := range g.Options {
			owner[o.Name] = g.Name
		}
	}

	for _, o := range opts {
		if err := o.validate(); err != nil {
			return err
		}
		if ownerGroup, exists := owner[o.Name]; exists {
			return &DuplicateOptionError{Name: o.Name, Group: ownerGroup}
		}
		owner[o.Name] = name
	}

	r.groups = append(r.groups, &Group{Name: name, Description: description, Options: opts})
	return nil
}

// Group returns a registered group by name, or nil.
func (r *Registry) Group(name string) *Group {
	for _, g := range r.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Groups returns the groups in registration order.
func (r *Registry) Groups() []*Group {
	return r.groups
}

func addToFlagSet(fs *pflag.FlagSet, o *Option) {
	// The current slot value doubles as the default so values written by an
	// earlier pass or the keyfile overlay survive a re-parse.
	switch o.Kind {
	case KindFlag:
		fs.BoolVarP(o.BoolVal, o.Name, o.Short, *o.BoolVal, o.Help)
	case KindString, KindFilename:
		fs.StringVarP(o.StrVal, o.Name, o.Short, *o.StrVal, o.Help)
	case KindInt:
		fs.IntVarP(o.IntVal, o.Name, o.Short, *o.IntVal, o.Help)
	case KindStringList:
		fs.StringSliceVarP(o.ListVal, o.Name, o.Short, *o.ListVal, o.Help)
	}
}

// Parse applies argv to every registered option. Tolerant mode skips unknown
// options so plugin names can be discovered before their groups exist; the
// strict final pass rejects them. The last occurrence of an option wins,
// except string lists, which append. Returns the positional arguments left
// over after flag parsing.
func (r *Registry) Parse(argv []string, strict bool) ([]string, error) {
	fs := pflag.NewFlagSet("chassis", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.Usage = func() {} // usage is rendered by the caller via Usage()
	if !strict {
		fs.ParseErrorsWhitelist.UnknownFlags = true
	}
	for _, g := range r.groups {
		for _, o := range g.Options {
			addToFlagSet(fs, o)
		}
	}

	if err := fs.Parse(argv); err != nil {
		return nil, &ParseError{Option: flagNameFromError(err), Reason: err.Error()}
	}

	r.fromCLI = make(map[string]bool)
	fs.Visit(func(f *pflag.Flag) {
		r.fromCLI[f.Name] = true
	})

	return fs.Args(), nil
}

// flagNameFromError pulls the offending flag name out of a pflag parse error
// so the diagnostic can point at the option. pflag spells the name either as
// "--name" or, for shorthands, quoted as 'x'.
func flagNameFromError(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, "--"); i >= 0 {
		name := msg[i+2:]
		if j := strings.IndexAny(name, ` "'=`); j >= 0 {
			name = name[:j]
		}
		return name
	}
	if i := strings.IndexByte(msg, '\''); i >= 0 {
		if j := strings.IndexByte(msg[i+1:], '\''); j >= 0 {
			return msg[i+1 : i+1+j]
		}
	}
	return ""
}

// SetFromCommandLine reports whether the most recent parse saw the option on
// argv. The keyfile overlay uses it to enforce command-line precedence.
func (r *Registry) SetFromCommandLine(name string) bool {
	return r.fromCLI[name]
}

// Usage renders grouped help text, one section per registered group.
func (r *Registry) Usage() string {
	var b strings.Builder
	for i, g := range r.groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n", g.Description)
		fs := pflag.NewFlagSet(g.Name, pflag.ContinueOnError)
		fs.SortFlags = false
		for _, o := range g.Options {
			addToFlagSet(fs, o)
		}
		b.WriteString(fs.FlagUsages())
	}
	return b.String()
}

// OptionsFromSpecs converts a plugin's wire-format option schema into parser
// options, allocating the backing slots on the host side. Defaults are parsed
// according to the declared kind.
func OptionsFromSpecs(pluginName string, specs []sdk.OptionSpec) ([]*Option, error) {
	opts := make([]*Option, 0, len(specs))
	for _, s := range specs {
		o := &Option{
			Name:        s.LongName,
			Short:       s.Short,
			Help:        s.Help,
			Placeholder: s.Placeholder,
		}
		switch s.Kind {
		case sdk.KindFlag:
			v := false
			if s.Default != "" {
				parsed, err := strconv.ParseBool(s.Default)
				if err != nil {
					return nil, fmt.Errorf("%w: plugin %s option --%s: invalid default %q", ErrInvalidConfig, pluginName, s.LongName, s.Default)
				}
				v = parsed
			}
			o.Kind, o.BoolVal = KindFlag, &v
		case sdk.KindString:
			v := s.Default
			o.Kind, o.StrVal = KindString, &v
		case sdk.KindFilename:
			v := s.Default
			o.Kind, o.StrVal = KindFilename, &v
		case sdk.KindInt:
			v := 0
			if s.Default != "" {
				parsed, err := strconv.Atoi(s.Default)
				if err != nil {
					return nil, fmt.Errorf("%w: plugin %s option --%s: invalid default %q", ErrInvalidConfig, pluginName, s.LongName, s.Default)
				}
				v = parsed
			}
			o.Kind, o.IntVal = KindInt, &v
		case sdk.KindStringList:
			var v []string
			if s.Default != "" {
				v = strings.Split(s.Default, DefaultListSeparator)
			}
			o.Kind, o.ListVal = KindStringList, &v
		default:
			return nil, fmt.Errorf("%w: plugin %s option --%s has unknown kind %q", ErrInvalidConfig, pluginName, s.LongName, s.Kind)
		}
		opts = append(opts, o)
	}
	return opts, nil
}
