package schedule

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// ValueSource supplies the random calendar dates and times of day the
// scheduler turns into candidate timestamps.
type ValueSource interface {
	Date() time.Time
	TimeOfDay() time.Duration
}

type Options struct {
	// OverlapRoomID names the room exempt from the room double-booking check.
	// Zero disables the exemption.
	OverlapRoomID int
	// TeacherConflicts additionally rejects a candidate when the teacher
	// already has a session at that instant.
	TeacherConflicts bool
}

type Scheduler struct {
	src    ValueSource
	opts   Options
	logger *zap.Logger
}

func New(src ValueSource, opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{src: src, opts: opts, logger: logger}
}

// Schedule draws slot.Count candidates and places them against state. The
// result may be shorter than requested, or empty; rejected candidates are not
// retried.
func (s *Scheduler) Schedule(state *State, slot Slot) []Session {
	if slot.Count <= 0 {
		return nil
	}
	return s.Place(state, slot, s.Candidates(slot.Count))
}

// Candidates draws count dates, sorts them ascending and attaches a time of
// day to each.
func (s *Scheduler) Candidates(count int) []time.Time {
	if count <= 0 {
		return nil
	}
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, startOfDay(s.src.Date()))
	}
	sort.SliceStable(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	candidates := make([]time.Time, 0, count)
	for _, date := range dates {
		candidates = append(candidates, date.Add(s.src.TimeOfDay()))
	}
	return candidates
}

// Place runs the conflict checks over a fixed candidate list, accepting into
// state whatever passes. Decisions depend only on state and the candidates.
func (s *Scheduler) Place(state *State, slot Slot, candidates []time.Time) []Session {
	var accepted []Session
	for _, at := range candidates {
		state.stats.Requested++
		session := Session{
			ClassID:   slot.ClassID,
			SubjectID: slot.SubjectID,
			TeacherID: slot.TeacherID,
			RoomID:    slot.RoomID,
			At:        at,
		}

		if reason, ok := s.admissible(state, session); !ok {
			state.reject(reason)
			s.logger.Debug("session rejected",
				zap.Int("class_id", session.ClassID),
				zap.Int("subject_id", session.SubjectID),
				zap.Int("teacher_id", session.TeacherID),
				zap.Int("room_id", session.RoomID),
				zap.Time("at", session.At),
				zap.String("reason", string(reason)),
			)
			continue
		}

		state.accept(session)
		accepted = append(accepted, session)
	}
	return accepted
}

func (s *Scheduler) admissible(state *State, session Session) (Reason, bool) {
	if state.HasClassAt(session.ClassID, session.At) {
		return ReasonClassBusy, false
	}
	if s.opts.TeacherConflicts && state.TeacherBusy(session.TeacherID, session.At) {
		return ReasonTeacherBusy, false
	}
	if s.isOverlapRoom(session.RoomID) {
		return "", true
	}
	if state.RoomBusy(session.RoomID, session.At) {
		return ReasonRoomBusy, false
	}
	return "", true
}

func (s *Scheduler) isOverlapRoom(roomID int) bool {
	return s.opts.OverlapRoomID != 0 && roomID == s.opts.OverlapRoomID
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
