package chassis

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chassis-run/chassis/internal/scripting"
	"github.com/chassis-run/chassis/pkg/sdk"
)

// VersionInfo carries the build metadata printed by --version.
type VersionInfo struct {
	Program string
	Version string
	Commit  string
	Date    string
}

var (
	versionTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	versionDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Render produces the --version report: program identity plus the versions
// of the components the bootstrap layer depends on.
func (v VersionInfo) Render() string {
	var b strings.Builder

	title := fmt.Sprintf("%s %s", v.Program, v.Version)
	b.WriteString(versionTitleStyle.Render(title))
	if v.Commit != "" || v.Date != "" {
		b.WriteString(versionDimStyle.Render(fmt.Sprintf(" (commit: %s, built: %s)", v.Commit, v.Date)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s: %s\n", "go", runtime.Version())
	fmt.Fprintf(&b, "  %s: protocol %d\n", "plugin", sdk.Handshake.ProtocolVersion)
	fmt.Fprintf(&b, "  %s: %s", "lua", scripting.Version())

	return b.String()
}
