package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassOccupancy(t *testing.T) {
	cases := []struct {
		name      string
		students  int
		capacity  int
		completed bool
		want      Occupancy
	}{
		{"empty", 0, 4, false, OccupancyEmpty},
		{"partial", 2, 4, false, OccupancyPartial},
		{"full", 4, 4, false, OccupancyFull},
		{"over", 5, 4, false, OccupancyFull},
		{"completed empty", 0, 4, true, OccupancyFull},
		{"completed partial", 1, 4, true, OccupancyFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Class{MaxCapacity: tc.capacity, IsCompleted: tc.completed}
			for i := 0; i < tc.students; i++ {
				c.Students = append(c.Students, string(rune('a'+i)))
			}
			assert.Equal(t, tc.want, c.Occupancy())
		})
	}
}

func TestClassOccupancyFullIffCompletedOrAtCapacity(t *testing.T) {
	for capacity := 1; capacity <= 6; capacity++ {
		for count := 0; count <= capacity+1; count++ {
			for _, completed := range []bool{false, true} {
				c := Class{MaxCapacity: capacity, IsCompleted: completed, Students: make([]string, count)}
				full := c.Occupancy() == OccupancyFull
				assert.Equal(t, completed || count >= capacity, full)
			}
		}
	}
}

func TestClassCloneDoesNotShareSlices(t *testing.T) {
	monitor := "m1"
	original := Class{ID: "c1", Students: []string{"s1"}, MonitorID: &monitor}
	cp := original.Clone()
	cp.Students[0] = "s2"
	*cp.MonitorID = "m2"

	assert.Equal(t, "s1", original.Students[0])
	assert.Equal(t, "m1", *original.MonitorID)
	assert.True(t, original.HasMonitor("m1"))
}

func TestClassPatchIsEmpty(t *testing.T) {
	assert.True(t, ClassPatch{}.IsEmpty())
	day := "Martes"
	assert.False(t, ClassPatch{Day: &day}.IsEmpty())
}
