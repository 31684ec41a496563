package seeder

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/schedule"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var ErrDependencyOrder = errors.New("tables emitted out of dependency order")

// Sink receives generated statements in emission order.
type Sink interface {
	Write(stmt sqlgen.Statement) error
}

type Seeder struct {
	config    SeedConfig
	generator *DataGenerator
	scheduler *schedule.Scheduler
	state     *schedule.State
	graph     *DependencyGraph
	tables    map[string]*TableInfo
	sink      Sink
	logger    *zap.Logger
	out       io.Writer

	ids             *Counters
	pending         map[string]*sqlgen.Statement
	rows            map[string]int
	statements      int
	studentsByClass map[int][]int
	sessionClasses  []int
	subjects        int
}

func New(cfg SeedConfig, generator *DataGenerator, scheduler *schedule.Scheduler, sink Sink, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		config:          normalize(cfg),
		generator:       generator,
		scheduler:       scheduler,
		state:           schedule.NewState(),
		graph:           NewDependencyGraph(),
		tables:          CatalogByName(),
		sink:            sink,
		logger:          logger,
		out:             color.Output,
		ids:             NewCounters(),
		pending:         make(map[string]*sqlgen.Statement),
		rows:            make(map[string]int),
		studentsByClass: make(map[int][]int),
	}
}

// SetOutput redirects the progress lines.
func (s *Seeder) SetOutput(w io.Writer) {
	s.out = w
}

// State exposes the schedule built by the run.
func (s *Seeder) State() *schedule.State {
	return s.state
}

func normalize(cfg SeedConfig) SeedConfig {
	if cfg.StartYear <= 0 {
		cfg.StartYear = 2024
	}
	if cfg.Years <= 0 {
		cfg.Years = 10
	}
	if cfg.Teachers <= 0 {
		cfg.Teachers = 10
	}
	if cfg.Classes <= 0 {
		cfg.Classes = 10
	}
	if cfg.StudentsPerClass <= 0 {
		cfg.StudentsPerClass = 10
	}
	if cfg.Subjects <= 0 {
		cfg.Subjects = 10
	}
	if cfg.Rooms <= 0 {
		cfg.Rooms = 10
	}
	if cfg.SessionsPerSlot < 0 {
		cfg.SessionsPerSlot = 0
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 1
	}
	if len(cfg.Coefficients) == 0 {
		cfg.Coefficients = DefaultCoefficients
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = DefaultStatuses
	}
	if len(cfg.ModuleNames) == 0 {
		cfg.ModuleNames = DefaultModuleNames
	}
	if len(cfg.SubjectNames) == 0 {
		cfg.SubjectNames = DefaultSubjectNames
	}
	return cfg
}

// Seed generates every table and writes the statements to the sink.
func (s *Seeder) Seed() (*Summary, error) {
	color.New(color.FgCyan).Fprintln(s.out, "🌱 Starting data generation...")

	for _, table := range s.tables {
		s.graph.AddTable(table)
	}
	order, err := s.graph.BuildInsertionOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to build insertion order: %w", err)
	}
	if err := s.graph.CheckOrder(emissionOrder); err != nil {
		return nil, err
	}
	s.logger.Debug("dependency order", zap.Strings("order", order))

	phases := []struct {
		tables []string
		run    func() error
	}{
		{[]string{TableYears}, s.seedYears},
		{[]string{TableTeachers}, s.seedTeachers},
		{[]string{TableModules, TableSubjects}, s.seedModules},
		{[]string{TableClasses}, s.seedClasses},
		{[]string{TableStudents}, s.seedStudents},
		{[]string{TableSessions}, s.seedSessions},
		{[]string{TableAttendance}, s.seedAttendance},
		{[]string{TableMarks}, s.seedMarks},
	}

	for _, phase := range phases {
		for _, table := range phase.tables {
			color.New(color.FgCyan).Fprintf(s.out, "  📝 Seeding %s...\n", table)
		}
		if err := phase.run(); err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", phase.tables[0], err)
		}
		if err := s.flush(); err != nil {
			return nil, err
		}
		for _, table := range phase.tables {
			color.New(color.FgGreen).Fprintf(s.out, "  ✅ %s: %d rows\n", table, s.rows[table])
			s.logger.Debug("table seeded", zap.String("table", table), zap.Int("rows", s.rows[table]))
		}
	}

	stats := s.state.Stats()
	if rejected := stats.RejectedTotal(); rejected > 0 {
		color.New(color.FgYellow).Fprintf(s.out, "⚠️  %d of %d candidate sessions dropped due to conflicts\n",
			rejected, stats.Requested)
	}
	color.New(color.FgGreen).Fprintln(s.out, "✅ Data generation completed successfully!")

	rows := make(map[string]int, len(s.rows))
	for table, n := range s.rows {
		rows[table] = n
	}
	return &Summary{
		Order:      append([]string(nil), emissionOrder...),
		Rows:       rows,
		Statements: s.statements,
		Schedule:   stats,
	}, nil
}

// seedYears always emits a single multi-row statement.
func (s *Seeder) seedYears() error {
	stmt := sqlgen.NewStatement(TableYears, s.tables[TableYears].InsertColumns()...)
	for _, year := range lo.RangeFrom(s.config.StartYear, s.config.Years) {
		s.ids.Next(TableYears)
		if err := stmt.Append(strconv.Itoa(year)); err != nil {
			return err
		}
	}
	s.rows[TableYears] += stmt.Len()
	return s.write(*stmt)
}

func (s *Seeder) seedTeachers() error {
	for i := 0; i < s.config.Teachers; i++ {
		s.ids.Next(TableTeachers)
		first, last := s.generator.FirstName(), s.generator.LastName()
		if err := s.emit(TableTeachers, first, last, s.generator.Email(first, last)); err != nil {
			return err
		}
	}
	return nil
}

// seedModules gives every teacher one module per year, each followed by the
// subject that belongs to it.
func (s *Seeder) seedModules() error {
	for year := 1; year <= s.ids.Last(TableYears); year++ {
		for teacher := 1; teacher <= s.ids.Last(TableTeachers); teacher++ {
			moduleID := s.ids.Next(TableModules)
			if err := s.emit(TableModules, s.generator.Pick(s.config.ModuleNames), teacher, year); err != nil {
				return err
			}
			s.ids.Next(TableSubjects)
			if err := s.emit(TableSubjects, s.generator.Pick(s.config.SubjectNames), moduleID, teacher); err != nil {
				return err
			}
		}
	}
	s.subjects = min(s.config.Subjects, s.ids.Last(TableSubjects))
	return nil
}

func (s *Seeder) seedClasses() error {
	years := s.ids.Last(TableYears)
	for i := 1; i <= s.config.Classes; i++ {
		s.ids.Next(TableClasses)
		if err := s.emit(TableClasses, "Class "+ClassLetters(i), s.generator.IntRange(1, years)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedStudents() error {
	for class := 1; class <= s.ids.Last(TableClasses); class++ {
		for k := 0; k < s.config.StudentsPerClass; k++ {
			studentID := s.ids.Next(TableStudents)
			first, last := s.generator.FirstName(), s.generator.LastName()
			if err := s.emit(TableStudents, first, last, s.generator.Email(first, last), class); err != nil {
				return err
			}
			s.studentsByClass[class] = append(s.studentsByClass[class], studentID)
		}
	}
	return nil
}

// seedSessions asks the scheduler for sessions of every class, subject and
// teacher combination, each in a randomly drawn room.
func (s *Seeder) seedSessions() error {
	for class := 1; class <= s.ids.Last(TableClasses); class++ {
		for subject := 1; subject <= s.subjects; subject++ {
			for teacher := 1; teacher <= s.ids.Last(TableTeachers); teacher++ {
				slot := schedule.Slot{
					ClassID:   class,
					SubjectID: subject,
					TeacherID: teacher,
					RoomID:    s.generator.IntRange(1, s.config.Rooms),
					Count:     s.config.SessionsPerSlot,
				}
				for _, session := range s.scheduler.Schedule(s.state, slot) {
					s.ids.Next(TableSessions)
					if err := s.emit(TableSessions, session.ClassID, session.SubjectID, session.At,
						session.TeacherID, session.RoomID); err != nil {
						return err
					}
					s.sessionClasses = append(s.sessionClasses, session.ClassID)
				}
			}
		}
	}
	return nil
}

// seedAttendance records a status for every student of the class that
// attended each accepted session.
func (s *Seeder) seedAttendance() error {
	for i, class := range s.sessionClasses {
		sessionID := i + 1
		for _, student := range s.studentsByClass[class] {
			s.ids.Next(TableAttendance)
			if err := s.emit(TableAttendance, student, sessionID, s.generator.Pick(s.config.Statuses)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedMarks() error {
	for student := 1; student <= s.ids.Last(TableStudents); student++ {
		for subject := 1; subject <= s.subjects; subject++ {
			s.ids.Next(TableMarks)
			mark := s.generator.Mark(s.config.MarkMin, s.config.MarkMax)
			coefficient := s.generator.PickFloat(s.config.Coefficients)
			if err := s.emit(TableMarks, student, subject, mark, coefficient); err != nil {
				return err
			}
		}
	}
	return nil
}

// emit buffers a row and writes the table's statement once it holds a full batch.
func (s *Seeder) emit(table string, values ...interface{}) error {
	stmt := s.pending[table]
	if stmt == nil {
		stmt = sqlgen.NewStatement(table, s.tables[table].InsertColumns()...)
		s.pending[table] = stmt
	}
	if err := stmt.Append(values...); err != nil {
		return err
	}
	s.rows[table]++

	if stmt.Len() >= s.config.Batch {
		return s.flushTable(table)
	}
	return nil
}

func (s *Seeder) flushTable(table string) error {
	stmt := s.pending[table]
	if stmt == nil || stmt.Len() == 0 {
		return nil
	}
	delete(s.pending, table)
	return s.write(*stmt)
}

func (s *Seeder) flush() error {
	for _, table := range emissionOrder {
		if err := s.flushTable(table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) write(stmt sqlgen.Statement) error {
	if stmt.Len() == 0 {
		return nil
	}
	if err := s.sink.Write(stmt); err != nil {
		return fmt.Errorf("failed to write %s statement: %w", stmt.Table, err)
	}
	s.statements++
	return nil
}

// ClassLetters names the n-th class the way spreadsheet columns are named:
// 1 -> A, 26 -> Z, 27 -> AA.
func ClassLetters(n int) string {
	if n <= 0 {
		return ""
	}
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}
