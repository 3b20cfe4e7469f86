package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		debaters, judges int
		want             RoundFormat
		ok               bool
	}{
		{2, 1, FormatSolo, true},
		{4, 1, FormatDoubleIron, true},
		{5, 1, FormatSingleIron, true},
		{6, 1, FormatStandard, true},
		{7, 3, FormatStandard, true},
		{12, 1, FormatStandard, true},
		{0, 1, FormatNone, false},
		{1, 1, FormatNone, false},
		{3, 1, FormatNone, false},
		{4, 0, FormatNone, false},
		{6, 0, FormatNone, false},
	}
	for _, tt := range tests {
		got, ok := Resolve(tt.debaters, tt.judges)
		assert.Equal(t, tt.want, got, "Resolve(%d, %d)", tt.debaters, tt.judges)
		assert.Equal(t, tt.ok, ok, "Resolve(%d, %d)", tt.debaters, tt.judges)
	}
}

func TestFormatTableIsAscending(t *testing.T) {
	for i := 1; i < len(formats); i++ {
		assert.Less(t, formats[i-1].Debaters, formats[i].Debaters)
		assert.False(t, formats[i-1].OpenEnded, "only the last format may be open-ended")
	}
	for _, s := range formats {
		assert.GreaterOrEqual(t, s.MinJudges, 1)
		assert.LessOrEqual(t, s.ProSize, s.ProType.Capacity())
		assert.LessOrEqual(t, s.ConSize, s.ConType.Capacity())
		assert.Equal(t, s.Debaters, s.ProSize+s.ConSize, "%s slices exactly its threshold", s.Format)
	}
}
