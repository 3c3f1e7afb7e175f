package planner

import (
	"testing"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	objerrors "github.com/input-output-hk/catalyst-forge-libs/objstore/errors"
)

func TestPlan_SmallObjectIsSinglePart(t *testing.T) {
	tests := []struct {
		name  string
		total int64
	}{
		{"one byte", 1},
		{"one kibibyte", 1024},
		{"exactly min part size", MinPartSize},
		{"just under auto part size", MinPartSize - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.total, 0)
			require.NoError(t, err)

			require.Len(t, plan, 1)
			assert.Equal(t, Part{Number: 1, Offset: 0, Length: tt.total}, plan[0])
		})
	}
}

func TestPlan_ZeroLength(t *testing.T) {
	plan, err := Plan(0, 0)
	require.NoError(t, err)

	require.Len(t, plan, 1)
	assert.Equal(t, Part{Number: 1, Offset: 0, Length: 0}, plan[0])
}

func TestPlan_TwelveMiBWithFiveMiBParts(t *testing.T) {
	plan, err := Plan(12*humanize.MiByte, 5*humanize.MiByte)
	require.NoError(t, err)

	assert.Equal(t, []Part{
		{Number: 1, Offset: 0, Length: 5 * humanize.MiByte},
		{Number: 2, Offset: 5 * humanize.MiByte, Length: 5 * humanize.MiByte},
		{Number: 3, Offset: 10 * humanize.MiByte, Length: 2 * humanize.MiByte},
	}, plan)
}

func TestPlan_PartsCoverObjectExactly(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		hint  int64
	}{
		{"even split", 20 * humanize.MiByte, 5 * humanize.MiByte},
		{"short final part", 23 * humanize.MiByte, 5 * humanize.MiByte},
		{"one byte over a boundary", 10*humanize.MiByte + 1, 5 * humanize.MiByte},
		{"auto sizing", 100 * humanize.GiByte, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Plan(tt.total, tt.hint)
			require.NoError(t, err)
			require.NotEmpty(t, plan)

			var offset int64
			for i, part := range plan {
				assert.Equal(t, i+1, part.Number, "part numbers are contiguous and 1-based")
				assert.Equal(t, offset, part.Offset, "parts are contiguous")
				if i < len(plan)-1 {
					assert.Equal(t, plan[0].Length, part.Length, "only the final part may be short")
				} else {
					assert.Positive(t, part.Length)
					assert.LessOrEqual(t, part.Length, plan[0].Length)
				}
				offset += part.Length
			}
			assert.Equal(t, tt.total, offset, "plan covers the object exactly")
			assert.LessOrEqual(t, len(plan), MaxPartCount)
		})
	}
}

func TestPartSize_AutoSizing(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		want  int64
	}{
		{"small object gets the floor", 10 * humanize.MiByte, MinPartSize},
		{"fits in 10000 parts at the floor", 40 * humanize.GiByte, MinPartSize},
		{"scales up past 10000 parts", 100 * humanize.GiByte, 3 * MinPartSize},
		{"unknown length uses stream default", -1, DefaultStreamPartSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := PartSize(tt.total, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, size)
		})
	}
}

func TestPartSize_HintValidation(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		hint    int64
		wantErr bool
	}{
		{"hint below minimum", 100 * humanize.MiByte, MinPartSize - 1, true},
		{"hint above maximum", 100 * humanize.MiByte, MaxPartSize + 1, true},
		{"hint at minimum", 100 * humanize.MiByte, MinPartSize, false},
		{"hint honored for unknown length", -1, 8 * humanize.MiByte, false},
		{"hint needs too many parts", 51 * humanize.GiByte, MinPartSize, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := PartSize(tt.total, tt.hint)
			if tt.wantErr {
				assert.True(t, objerrors.IsInvalidSize(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hint, size)
		})
	}
}

func TestPlan_FailsFastOnImpossibleSizes(t *testing.T) {
	t.Run("object above the service maximum", func(t *testing.T) {
		_, err := Plan(MaxObjectSize+1, 0)
		assert.True(t, objerrors.IsInvalidSize(err))
	})

	t.Run("unknown length cannot be planned", func(t *testing.T) {
		_, err := Plan(-1, 0)
		assert.True(t, objerrors.IsInvalidSize(err))
	})
}
