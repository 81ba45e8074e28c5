package render

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/panbanda/radonlens/pkg/models"
)

// Tier is the severity band of a maintainability index.
type Tier string

const (
	TierNormal  Tier = "normal"
	TierWarning Tier = "warning"
	TierError   Tier = "error"
)

// TierFor maps an index to its band: 20 and up is normal, 10 and up is a
// warning, anything lower is an error.
func TierFor(index float64) Tier {
	switch {
	case index >= 20:
		return TierNormal
	case index >= 10:
		return TierWarning
	default:
		return TierError
	}
}

// Colors returns the foreground and background theme keys of the tier.
func (t Tier) Colors() (foreground, background string) {
	switch t {
	case TierWarning:
		return "statusBarItem.warningForeground", "statusBarItem.warningBackground"
	case TierError:
		return "statusBarItem.errorForeground", "statusBarItem.errorBackground"
	default:
		return "statusBarItem.foreground", "statusBarItem.background"
	}
}

// Status is the maintainability indicator of the most recently rendered document.
type Status struct {
	Document   string `json:"document,omitempty" toon:"document,omitempty"`
	Text       string `json:"text" toon:"text"`
	Tooltip    string `json:"tooltip" toon:"tooltip"`
	Tier       Tier   `json:"tier" toon:"tier"`
	Foreground string `json:"foreground" toon:"foreground"`
	Background string `json:"background" toon:"background"`
	Visible    bool   `json:"visible" toon:"visible"`
}

// StatusFor builds the indicator for a maintainability result.
func StatusFor(id string, m models.Maintainability) Status {
	tier := TierFor(m.Index)
	fg, bg := tier.Colors()
	return Status{
		Document:   id,
		Text:       fmt.Sprintf("%.2f (%s)", m.Index, m.Rank),
		Tooltip:    fmt.Sprintf("Radon Maintainability\n\nIndex: %.2f\nRank: %s", m.Index, m.Rank),
		Tier:       tier,
		Foreground: fg,
		Background: bg,
		Visible:    true,
	}
}

// Terminal renders the indicator text for a terminal, colored by tier.
func (s Status) Terminal() string {
	if !s.Visible {
		return ""
	}
	switch s.Tier {
	case TierWarning:
		return color.YellowString(s.Text)
	case TierError:
		return color.RedString(s.Text)
	default:
		return s.Text
	}
}
