package dates

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestParseSpecifier(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantErr   bool
		wantStart Date
		wantEnd   Date
	}{
		{
			name:      "year covers january through december",
			spec:      "2023",
			wantStart: Date{2023, time.January, 1},
			wantEnd:   Date{2023, time.December, 31},
		},
		{
			name:      "month covers first through last day",
			spec:      "2023.03",
			wantStart: Date{2023, time.March, 1},
			wantEnd:   Date{2023, time.March, 31},
		},
		{
			name:      "february in a non-leap year ends on the 28th",
			spec:      "2023.02",
			wantStart: Date{2023, time.February, 1},
			wantEnd:   Date{2023, time.February, 28},
		},
		{
			name:      "february in a leap year ends on the 29th",
			spec:      "2024.02",
			wantStart: Date{2024, time.February, 1},
			wantEnd:   Date{2024, time.February, 29},
		},
		{
			name:      "december handles the year rollover",
			spec:      "2023.12",
			wantStart: Date{2023, time.December, 1},
			wantEnd:   Date{2023, time.December, 31},
		},
		{
			name:      "single day",
			spec:      "2023.02.15",
			wantStart: Date{2023, time.February, 15},
			wantEnd:   Date{2023, time.February, 15},
		},
		{
			name:    "month out of range",
			spec:    "2023.13",
			wantErr: true,
		},
		{
			name:    "day not on the calendar",
			spec:    "2023.02.30",
			wantErr: true,
		},
		{
			name:    "leap day in a non-leap year",
			spec:    "2023.02.29",
			wantErr: true,
		},
		{
			name:    "not a number",
			spec:    "invalid",
			wantErr: true,
		},
		{
			name:    "too many parts",
			spec:    "2023.01.01.01",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseSpecifier(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
		})
	}
}

func TestParseArg(t *testing.T) {
	tests := []struct {
		name      string
		arg       string
		wantErr   bool
		wantStart Date
		wantEnd   Date
	}{
		{
			name:      "single year specifier",
			arg:       "2023",
			wantStart: Date{2023, time.January, 1},
			wantEnd:   Date{2023, time.December, 31},
		},
		{
			name:      "single month specifier",
			arg:       "2023.05",
			wantStart: Date{2023, time.May, 1},
			wantEnd:   Date{2023, time.May, 31},
		},
		{
			name:      "month to month range",
			arg:       "2023.01-2023.03",
			wantStart: Date{2023, time.January, 1},
			wantEnd:   Date{2023, time.March, 31},
		},
		{
			name:      "degenerate single-day range",
			arg:       "2023.01.01-2023.01.01",
			wantStart: Date{2023, time.January, 1},
			wantEnd:   Date{2023, time.January, 1},
		},
		{
			name:    "start after end",
			arg:     "2023.03-2023.01",
			wantErr: true,
		},
		{
			name:    "garbage on both sides",
			arg:     "invalid-date",
			wantErr: true,
		},
		{
			name:    "garbage on the right side",
			arg:     "2023.01-invalid",
			wantErr: true,
		},
		{
			// The first "-" splits, so this is a range "2023" to "01",
			// not an ISO date.
			name:    "dashed token is read as a range",
			arg:     "2023-01-15",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseArg(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
		})
	}
}

func TestSelector(t *testing.T) {
	t.Run("empty selector matches everything", func(t *testing.T) {
		s, err := NewSelector(nil)
		assert.NoError(t, err)
		assert.True(t, s.Selected(Date{1999, time.July, 4}))
		assert.True(t, s.Selected(Date{2030, time.January, 1}))
	})

	t.Run("matches any contained range", func(t *testing.T) {
		s, err := NewSelector([]string{"2023.01", "2023.03"})
		assert.NoError(t, err)
		assert.True(t, s.Selected(Date{2023, time.January, 15}))
		assert.True(t, s.Selected(Date{2023, time.March, 31}))
		assert.False(t, s.Selected(Date{2023, time.February, 1}))
	})

	t.Run("one bad argument fails the whole construction", func(t *testing.T) {
		_, err := NewSelector([]string{"2023.01", "bogus"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})
}

func TestDateOrdering(t *testing.T) {
	a := Date{2023, time.January, 31}
	b := Date{2023, time.February, 1}
	c := Date{2024, time.January, 1}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.True(t, c.After(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestDateString(t *testing.T) {
	assert.Equal(t, "2023.02.05", Date{2023, time.February, 5}.String())
}
