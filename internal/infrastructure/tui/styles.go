// Package tui is the interactive review screen: a paged question table, an
// answer editor bound to the workspace draft and a rephrase prompt.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/rfpdesk/pkg/application"
	"github.com/felixgeelhaar/rfpdesk/pkg/domain/trust"
)

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var (
	tierHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	tierMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	tierLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	dirtyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

func tierStyle(t trust.Tier) lipgloss.Style {
	switch t {
	case trust.TierHigh:
		return tierHigh
	case trust.TierMedium:
		return tierMedium
	default:
		return tierLow
	}
}

// BadgeLabel is the plain text of a trust badge, e.g. "87% High".
func BadgeLabel(b trust.Badge) string {
	return fmt.Sprintf("%3d%% %s", b.Percent, b.Tier.DisplayName())
}

// RenderBadge colors a trust badge by tier.
func RenderBadge(b trust.Badge) string {
	return tierStyle(b.Tier).Render(BadgeLabel(b))
}

func noticeStyle(level application.NoticeLevel) lipgloss.Style {
	switch level {
	case application.NoticeSuccess:
		return tierHigh
	case application.NoticeError:
		return tierLow
	default:
		return helpStyle
	}
}
