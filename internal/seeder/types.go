package seeder

import (
	"github.com/Lumos-Labs-HQ/schoolseed/internal/schedule"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
)

type SeedConfig struct {
	StartYear        int       // First academic year name
	Years            int       // Number of academic years
	Teachers         int       // Teacher roster size
	Classes          int       // Class roster size
	StudentsPerClass int       // Students enrolled in each class
	Subjects         int       // Subjects taught to every class (ids 1..n)
	Rooms            int       // Room ids 1..n
	SessionsPerSlot  int       // Candidate sessions per class/subject/teacher
	Batch            int       // Rows per INSERT statement
	MarkMin          float64   // Lowest mark, used as given
	MarkMax          float64   // Highest mark
	Coefficients     []float64 // Subject weights marks are drawn with
	Statuses         []string  // Attendance statuses
	ModuleNames      []string
	SubjectNames     []string
}

type TableInfo struct {
	sqlgen.TableDef
	Dependencies []string
}

// Counters hands out auto-increment ids per table, mirroring what the target
// database assigns when the statements are loaded in order.
type Counters struct {
	last map[string]int
}

func NewCounters() *Counters {
	return &Counters{last: make(map[string]int)}
}

func (c *Counters) Next(table string) int {
	c.last[table]++
	return c.last[table]
}

func (c *Counters) Last(table string) int {
	return c.last[table]
}

type Summary struct {
	Order      []string       // Tables in emission order
	Rows       map[string]int // Rows emitted per table
	Statements int            // Statements written to the sink
	Schedule   schedule.Stats
}

// TotalRows sums rows over all tables.
func (s *Summary) TotalRows() int {
	total := 0
	for _, n := range s.Rows {
		total += n
	}
	return total
}
