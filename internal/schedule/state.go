package schedule

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// Session is one accepted class session. It never changes once accepted.
type Session struct {
	ClassID   int
	SubjectID int
	TeacherID int
	RoomID    int
	At        time.Time
}

// Slot is a scheduling request for one class/subject/teacher/room combination.
type Slot struct {
	ClassID   int
	SubjectID int
	TeacherID int
	RoomID    int
	Count     int
}

type Reason string

const (
	ReasonClassBusy   Reason = "class_busy"
	ReasonRoomBusy    Reason = "room_busy"
	ReasonTeacherBusy Reason = "teacher_busy"
)

type Stats struct {
	Requested int
	Accepted  int
	Rejected  map[Reason]int
}

// RejectedTotal sums rejections over all reasons.
func (s Stats) RejectedTotal() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// occupancy keys a room or teacher at an instant. Instants are stored as unix
// seconds so that equal wall times in different *time.Location values collide.
type occupancy struct {
	id int
	at int64
}

// State accumulates accepted sessions for one generation run. It is not safe
// for concurrent use.
type State struct {
	sessions  []Session
	classesAt map[int64]map[int]struct{}
	rooms     map[occupancy]struct{}
	teachers  map[occupancy]struct{}
	stats     Stats
}

func NewState() *State {
	return &State{
		classesAt: make(map[int64]map[int]struct{}),
		rooms:     make(map[occupancy]struct{}),
		teachers:  make(map[occupancy]struct{}),
		stats:     Stats{Rejected: make(map[Reason]int)},
	}
}

// Sessions returns the accepted sessions in acceptance order.
func (s *State) Sessions() []Session {
	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

func (s *State) Len() int {
	return len(s.sessions)
}

func (s *State) HasClassAt(classID int, at time.Time) bool {
	_, ok := s.classesAt[at.Unix()][classID]
	return ok
}

func (s *State) RoomBusy(roomID int, at time.Time) bool {
	_, ok := s.rooms[occupancy{id: roomID, at: at.Unix()}]
	return ok
}

func (s *State) TeacherBusy(teacherID int, at time.Time) bool {
	_, ok := s.teachers[occupancy{id: teacherID, at: at.Unix()}]
	return ok
}

// ClassesAt lists, in ascending order, the classes with a session at the instant.
func (s *State) ClassesAt(at time.Time) []int {
	ids := lo.Keys(s.classesAt[at.Unix()])
	sort.Ints(ids)
	return ids
}

// Stats returns a snapshot of the request/accept/reject counters.
func (s *State) Stats() Stats {
	snapshot := s.stats
	snapshot.Rejected = make(map[Reason]int, len(s.stats.Rejected))
	for reason, n := range s.stats.Rejected {
		snapshot.Rejected[reason] = n
	}
	return snapshot
}

func (s *State) accept(session Session) {
	key := session.At.Unix()
	classes, ok := s.classesAt[key]
	if !ok {
		classes = make(map[int]struct{})
		s.classesAt[key] = classes
	}
	classes[session.ClassID] = struct{}{}
	s.rooms[occupancy{id: session.RoomID, at: key}] = struct{}{}
	s.teachers[occupancy{id: session.TeacherID, at: key}] = struct{}{}
	s.sessions = append(s.sessions, session)
	s.stats.Accepted++
}

func (s *State) reject(reason Reason) {
	s.stats.Rejected[reason]++
}
