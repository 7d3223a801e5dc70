package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeCompliance(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		worked   int
		want     Compliance
	}{
		{
			name:     "exact journey",
			expected: 480, worked: 480,
			want: Compliance{ExpectedMinutes: 480, WorkedMinutes: 480, IsCompleted: true, ProgressPercentage: 100},
		},
		{
			name:     "short day",
			expected: 480, worked: 420,
			want: Compliance{ExpectedMinutes: 480, WorkedMinutes: 420, RemainingMinutes: 60, ProgressPercentage: 88, DeviationMinutes: -60},
		},
		{
			name:     "overtime never leaves negative remaining",
			expected: 480, worked: 540,
			want: Compliance{ExpectedMinutes: 480, WorkedMinutes: 540, IsCompleted: true, ProgressPercentage: 113, DeviationMinutes: 60},
		},
		{
			name:     "work on a day off",
			expected: 0, worked: 90,
			want: Compliance{WorkedMinutes: 90, IsWorkingOnAbsence: true, DeviationMinutes: 90},
		},
		{
			name:     "nothing expected nothing worked",
			expected: 0, worked: 0,
			want: Compliance{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCompliance(tt.expected, tt.worked)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.RemainingMinutes, 0)
		})
	}
}

func TestClassifyDay(t *testing.T) {
	closed := Replay(seq("CLOCK_IN@09:00", "CLOCK_OUT@12:00"), at("20:00"))
	open := Replay(seq("CLOCK_IN@09:00"), at("10:00"))
	empty := Replay(nil, at("20:00"))

	assert.Equal(t, DayInProgress, ClassifyDay(open, ComputeCompliance(480, open.WorkedMinutes())))
	assert.Equal(t, DayIncomplete, ClassifyDay(closed, ComputeCompliance(480, closed.WorkedMinutes())))
	assert.Equal(t, DayCompleted, ClassifyDay(closed, ComputeCompliance(180, closed.WorkedMinutes())))
	assert.Equal(t, DayOffSchedule, ClassifyDay(closed, ComputeCompliance(0, closed.WorkedMinutes())))
	assert.Equal(t, DayNoRecord, ClassifyDay(empty, ComputeCompliance(480, 0)))
	assert.Equal(t, DayNonWorking, ClassifyDay(empty, ComputeCompliance(0, 0)))
	assert.Equal(t, "Sin fichajes", DayNoRecord.Label())
}
