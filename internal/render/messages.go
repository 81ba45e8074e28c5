package render

import (
	"fmt"

	"github.com/panbanda/radonlens/pkg/models"
)

// RiskMessage describes the risk of a complexity rank.
func RiskMessage(rank string) string {
	switch rank {
	case "A":
		return "low - simple block"
	case "B":
		return "low - well structured and stable block"
	case "C":
		return "moderate - slightly complex block"
	case "D":
		return "more than moderate - more complex block"
	case "E":
		return "high - complex block, alarming"
	default:
		return "very high - error - prone, unstable block"
	}
}

// RangeInformation gives the index band of a maintainability rank.
func RangeInformation(rank string) string {
	switch rank {
	case "B":
		return "(19-10, medium)"
	case "C":
		return "(9-0, extremely low)"
	default:
		return "(100-20 = very high)"
	}
}

// SourceInfoSummary lists the raw counters, one per line.
func SourceInfoSummary(info models.SourceInfo) string {
	return fmt.Sprintf(`Lines of code: %d
Logical lines of code: %d
Source lines of code: %d
Amount of single line comments: %d
Amount of multi line strings: %d
Number of blank lines: %d`, info.LOC, info.LLOC, info.SLOC, info.Comments, info.Multi, info.Blank)
}

// RatingMessage is the annotation text of one rated block.
func RatingMessage(r models.Rating) string {
	return fmt.Sprintf("%s \"%s\" is rated %s by a complexity of %d. The risk is %s",
		r.Kind.Title(), r.Name, r.Rank, r.Complexity, RiskMessage(r.Rank))
}

// MaintainabilityMessage is the annotation text of a file's maintainability.
func MaintainabilityMessage(basename string, m models.Maintainability) string {
	return fmt.Sprintf("%s is rated %s with a maintainability index of %.2f %s",
		basename, m.Rank, m.Index, RangeInformation(m.Rank))
}
