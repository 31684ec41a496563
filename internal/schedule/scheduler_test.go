package schedule

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	dates []time.Time
	times []time.Duration
	di    int
	ti    int
}

func (s *scriptedSource) Date() time.Time {
	d := s.dates[s.di%len(s.dates)]
	s.di++
	return d
}

func (s *scriptedSource) TimeOfDay() time.Duration {
	t := s.times[s.ti%len(s.times)]
	s.ti++
	return t
}

type randomSource struct {
	rng  *rand.Rand
	days int
}

func (s *randomSource) Date() time.Time {
	return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, s.rng.Intn(s.days))
}

func (s *randomSource) TimeOfDay() time.Duration {
	return time.Duration(8+s.rng.Intn(4)) * time.Hour
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func at(d, hour int) time.Time {
	return day(d).Add(time.Duration(hour) * time.Hour)
}

func TestSameClassTwiceAtSameInstantKeepsOne(t *testing.T) {
	s := New(nil, Options{OverlapRoomID: 9}, nil)
	state := NewState()
	slot := Slot{ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 3}

	got := s.Place(state, slot, []time.Time{at(2, 9), at(2, 9)})

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ClassID)
	assert.Equal(t, 3, got[0].RoomID)
	assert.True(t, got[0].At.Equal(at(2, 9)))
	assert.Equal(t, 1, state.Stats().Rejected[ReasonClassBusy])
}

func TestOverlapRoomAcceptsDifferentClasses(t *testing.T) {
	s := New(nil, Options{OverlapRoomID: 9}, nil)
	state := NewState()

	first := s.Place(state, Slot{ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 9}, []time.Time{at(2, 9)})
	second := s.Place(state, Slot{ClassID: 2, SubjectID: 1, TeacherID: 2, RoomID: 9}, []time.Time{at(2, 9)})

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, []int{1, 2}, state.ClassesAt(at(2, 9)))
}

func TestOverlapRoomStillRejectsSameClass(t *testing.T) {
	s := New(nil, Options{OverlapRoomID: 9}, nil)
	state := NewState()

	s.Place(state, Slot{ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 9}, []time.Time{at(2, 9)})
	got := s.Place(state, Slot{ClassID: 1, SubjectID: 2, TeacherID: 2, RoomID: 4}, []time.Time{at(2, 9)})

	assert.Empty(t, got)
	assert.Equal(t, 1, state.Len())
}

func TestRoomDoubleBookingRejected(t *testing.T) {
	s := New(nil, Options{OverlapRoomID: 9}, nil)
	state := NewState()

	s.Place(state, Slot{ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 3}, []time.Time{at(2, 9)})
	got := s.Place(state, Slot{ClassID: 2, SubjectID: 1, TeacherID: 2, RoomID: 3}, []time.Time{at(2, 9), at(2, 10)})

	require.Len(t, got, 1)
	assert.True(t, got[0].At.Equal(at(2, 10)))
	assert.Equal(t, 1, state.Stats().Rejected[ReasonRoomBusy])
}

func TestZeroOverlapRoomExemptsNothing(t *testing.T) {
	s := New(nil, Options{}, nil)
	state := NewState()

	s.Place(state, Slot{ClassID: 1, TeacherID: 1, RoomID: 0}, []time.Time{at(2, 9)})
	got := s.Place(state, Slot{ClassID: 2, TeacherID: 2, RoomID: 0}, []time.Time{at(2, 9)})

	assert.Empty(t, got)
}

func TestTeacherRule(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		secondRm int
		want     int
	}{
		{name: "off allows same teacher in two rooms", opts: Options{OverlapRoomID: 9}, secondRm: 4, want: 1},
		{name: "on rejects same teacher in two rooms", opts: Options{OverlapRoomID: 9, TeacherConflicts: true}, secondRm: 4, want: 0},
		{name: "on applies in overlap room", opts: Options{OverlapRoomID: 9, TeacherConflicts: true}, secondRm: 9, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(nil, tc.opts, nil)
			state := NewState()
			s.Place(state, Slot{ClassID: 1, TeacherID: 7, RoomID: 3}, []time.Time{at(2, 9)})
			got := s.Place(state, Slot{ClassID: 2, TeacherID: 7, RoomID: tc.secondRm}, []time.Time{at(2, 9)})
			assert.Len(t, got, tc.want)
		})
	}
}

func TestCandidatesSortedDatesThenTimes(t *testing.T) {
	src := &scriptedSource{
		dates: []time.Time{day(5).Add(13 * time.Hour), day(1), day(3)},
		times: []time.Duration{8 * time.Hour, 9 * time.Hour, 10 * time.Hour},
	}
	s := New(src, Options{}, nil)

	got := s.Candidates(3)

	require.Len(t, got, 3)
	assert.True(t, got[0].Equal(at(1, 8)))
	assert.True(t, got[1].Equal(at(3, 9)))
	assert.True(t, got[2].Equal(at(5, 10)), "time of day replaces the drawn clock time")
}

func TestScheduleNonPositiveCount(t *testing.T) {
	s := New(&scriptedSource{dates: []time.Time{day(1)}, times: []time.Duration{0}}, Options{}, nil)
	state := NewState()

	assert.Nil(t, s.Schedule(state, Slot{ClassID: 1, Count: 0}))
	assert.Nil(t, s.Schedule(state, Slot{ClassID: 1, Count: -2}))
	assert.Equal(t, 0, state.Stats().Requested)
}

func TestScheduleMayYieldFewerThanRequested(t *testing.T) {
	src := &scriptedSource{dates: []time.Time{day(4)}, times: []time.Duration{9 * time.Hour}}
	s := New(src, Options{}, nil)
	state := NewState()

	got := s.Schedule(state, Slot{ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 2, Count: 5})

	assert.Len(t, got, 1)
	stats := state.Stats()
	assert.Equal(t, 5, stats.Requested)
	assert.Equal(t, 1, stats.Accepted)
	assert.Equal(t, 4, stats.RejectedTotal())
}

func TestPlaceDeterministic(t *testing.T) {
	candidates := []time.Time{at(1, 8), at(1, 8), at(1, 9), at(2, 8), at(1, 9)}
	slots := []Slot{
		{ClassID: 1, SubjectID: 1, TeacherID: 1, RoomID: 2},
		{ClassID: 2, SubjectID: 1, TeacherID: 2, RoomID: 2},
		{ClassID: 3, SubjectID: 2, TeacherID: 3, RoomID: 5},
		{ClassID: 1, SubjectID: 3, TeacherID: 3, RoomID: 5},
	}

	run := func() []Session {
		s := New(nil, Options{OverlapRoomID: 5}, nil)
		state := NewState()
		for _, slot := range slots {
			s.Place(state, slot, candidates)
		}
		return state.Sessions()
	}

	assert.Equal(t, run(), run())
}

func TestInvariantsHoldUnderRandomLoad(t *testing.T) {
	const overlap = 4
	src := &randomSource{rng: rand.New(rand.NewSource(42)), days: 5}
	s := New(src, Options{OverlapRoomID: overlap}, nil)
	state := NewState()
	rng := rand.New(rand.NewSource(7))

	for class := 1; class <= 6; class++ {
		for subject := 1; subject <= 4; subject++ {
			for teacher := 1; teacher <= 3; teacher++ {
				s.Schedule(state, Slot{
					ClassID:   class,
					SubjectID: subject,
					TeacherID: teacher,
					RoomID:    1 + rng.Intn(overlap),
					Count:     6,
				})
			}
		}
	}

	sessions := state.Sessions()
	require.NotEmpty(t, sessions)

	classSeen := make(map[occupancy]bool)
	roomSeen := make(map[occupancy]bool)
	for _, sess := range sessions {
		ck := occupancy{id: sess.ClassID, at: sess.At.Unix()}
		assert.False(t, classSeen[ck], "class %d double booked at %s", sess.ClassID, sess.At)
		classSeen[ck] = true

		if sess.RoomID == overlap {
			continue
		}
		rk := occupancy{id: sess.RoomID, at: sess.At.Unix()}
		assert.False(t, roomSeen[rk], "room %d double booked at %s", sess.RoomID, sess.At)
		roomSeen[rk] = true
	}

	stats := state.Stats()
	assert.Equal(t, stats.Requested, stats.Accepted+stats.RejectedTotal())
	assert.Equal(t, len(sessions), stats.Accepted)
}

func TestStatsSnapshotIsDetached(t *testing.T) {
	s := New(nil, Options{}, nil)
	state := NewState()
	s.Place(state, Slot{ClassID: 1, RoomID: 1}, []time.Time{at(1, 8), at(1, 8)})

	snap := state.Stats()
	snap.Rejected[ReasonClassBusy] = 100

	assert.Equal(t, 1, state.Stats().Rejected[ReasonClassBusy])
}

func TestSessionsReturnsCopy(t *testing.T) {
	s := New(nil, Options{}, nil)
	state := NewState()
	s.Place(state, Slot{ClassID: 1, RoomID: 1}, []time.Time{at(1, 8)})

	got := state.Sessions()
	got[0].ClassID = 99

	assert.Equal(t, 1, state.Sessions()[0].ClassID)
}
