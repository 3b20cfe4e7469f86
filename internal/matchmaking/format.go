package matchmaking

// RoundFormat names a round configuration selected from participant counts.
type RoundFormat string

const (
	FormatNone       RoundFormat = ""
	FormatSolo       RoundFormat = "solo"        // 1v1
	FormatDoubleIron RoundFormat = "double_iron" // 2v2
	FormatSingleIron RoundFormat = "single_iron" // 3v2 or 2v3
	FormatStandard   RoundFormat = "standard"    // 3v3, surplus debaters judge
)

// FormatSpec describes how a format is sliced into teams. For formats with
// RandomIronSide the sizes and types are given for the "government is iron"
// case and mirrored on the other coin outcome.
type FormatSpec struct {
	Format         RoundFormat
	Debaters       int  // debater count that selects this format
	OpenEnded      bool // selected by Debaters or more
	ProSize        int
	ConSize        int
	ProType        TeamType
	ConType        TeamType
	MinJudges      int
	RandomIronSide bool
}

// formats is ordered by ascending debater threshold.
var formats = []FormatSpec{
	{Format: FormatSolo, Debaters: 2, ProSize: 1, ConSize: 1, ProType: TeamIron, ConType: TeamIron, MinJudges: 1},
	{Format: FormatDoubleIron, Debaters: 4, ProSize: 2, ConSize: 2, ProType: TeamIron, ConType: TeamIron, MinJudges: 1},
	{Format: FormatSingleIron, Debaters: 5, ProSize: 2, ConSize: 3, ProType: TeamIron, ConType: TeamFull, MinJudges: 1, RandomIronSide: true},
	{Format: FormatStandard, Debaters: 6, OpenEnded: true, ProSize: 3, ConSize: 3, ProType: TeamFull, ConType: TeamFull, MinJudges: 1},
}

// Spec returns the slicing spec for f.
func (f RoundFormat) Spec() (FormatSpec, bool) {
	for _, s := range formats {
		if s.Format == f {
			return s, true
		}
	}
	return FormatSpec{}, false
}

// Label is a human readable name, e.g. "Double Iron (2v2)".
func (f RoundFormat) Label() string {
	switch f {
	case FormatSolo:
		return "Solo (1v1)"
	case FormatDoubleIron:
		return "Double Iron (2v2)"
	case FormatSingleIron:
		return "Single Iron (3v2)"
	case FormatStandard:
		return "Standard (3v3)"
	}
	return "None"
}

// Resolve maps registration counts to the achievable round format. Lower
// formats need an exact debater count; the largest format accepts any surplus,
// which the allocator turns into extra panelists.
func Resolve(debaters, judges int) (RoundFormat, bool) {
	if judges < 1 {
		return FormatNone, false
	}
	for _, s := range formats {
		if judges < s.MinJudges {
			continue
		}
		if debaters == s.Debaters || (s.OpenEnded && debaters > s.Debaters) {
			return s.Format, true
		}
	}
	return FormatNone, false
}

// MinimumDebaters is the smallest debater count any format accepts.
func MinimumDebaters() int {
	return formats[0].Debaters
}
