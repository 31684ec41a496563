package seeder

import "github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"

const (
	TableYears      = "years"
	TableTeachers   = "teachers"
	TableModules    = "modules"
	TableSubjects   = "subjects"
	TableClasses    = "classes"
	TableStudents   = "students"
	TableSessions   = "class_sessions"
	TableAttendance = "attendance"
	TableMarks      = "marks"
)

// emissionOrder is the order in which Seed first writes to each table.
var emissionOrder = []string{
	TableYears,
	TableTeachers,
	TableModules,
	TableSubjects,
	TableClasses,
	TableStudents,
	TableSessions,
	TableAttendance,
	TableMarks,
}

var (
	DefaultModuleNames = []string{
		"Mathematics", "Computer Science", "Physics", "Chemistry", "History",
		"Biology", "Geography", "Economics", "Philosophy", "Art",
	}
	DefaultSubjectNames = []string{
		"Algebra", "Programming", "Mechanics", "Organic Chemistry", "World History",
		"Biology Basics", "Human Geography", "Microeconomics", "Ethical Theory", "Sculpture",
	}
	DefaultStatuses     = []string{"Present", "Absent", "Late"}
	DefaultCoefficients = []float64{1.0, 1.5, 2.0, 2.5, 3.0}
)

func pk() sqlgen.ColumnDef {
	return sqlgen.ColumnDef{Name: "id", Kind: sqlgen.KindID}
}

func col(name, kind string) sqlgen.ColumnDef {
	return sqlgen.ColumnDef{Name: name, Kind: kind}
}

func ref(name, table string) sqlgen.ColumnDef {
	return sqlgen.ColumnDef{Name: name, Kind: sqlgen.KindInt, FKTable: table, FKColumn: "id"}
}

// Catalog declares the school schema. Column order is the INSERT column order.
func Catalog() []*TableInfo {
	tables := []sqlgen.TableDef{
		{Name: TableYears, Columns: []sqlgen.ColumnDef{pk(), col("name", sqlgen.KindText)}},
		{Name: TableTeachers, Columns: []sqlgen.ColumnDef{
			pk(),
			col("first_name", sqlgen.KindText),
			col("last_name", sqlgen.KindText),
			col("email", sqlgen.KindText),
		}},
		{Name: TableModules, Columns: []sqlgen.ColumnDef{
			pk(),
			col("name", sqlgen.KindText),
			ref("head_id", TableTeachers),
			ref("year_id", TableYears),
		}},
		{Name: TableSubjects, Columns: []sqlgen.ColumnDef{
			pk(),
			col("name", sqlgen.KindText),
			ref("module_id", TableModules),
			ref("teacher_id", TableTeachers),
		}},
		{Name: TableClasses, Columns: []sqlgen.ColumnDef{
			pk(),
			col("name", sqlgen.KindText),
			ref("year_id", TableYears),
		}},
		{Name: TableStudents, Columns: []sqlgen.ColumnDef{
			pk(),
			col("first_name", sqlgen.KindText),
			col("last_name", sqlgen.KindText),
			col("email", sqlgen.KindText),
			ref("class_id", TableClasses),
		}},
		{Name: TableSessions, Columns: []sqlgen.ColumnDef{
			pk(),
			ref("class_id", TableClasses),
			ref("subject_id", TableSubjects),
			col("session_date", sqlgen.KindTimestamp),
			ref("teacher_id", TableTeachers),
			col("room_id", sqlgen.KindInt),
		}},
		{Name: TableAttendance, Columns: []sqlgen.ColumnDef{
			pk(),
			ref("student_id", TableStudents),
			ref("session_id", TableSessions),
			col("status", sqlgen.KindText),
		}},
		{Name: TableMarks, Columns: []sqlgen.ColumnDef{
			pk(),
			ref("student_id", TableStudents),
			ref("subject_id", TableSubjects),
			col("mark", sqlgen.KindDecimal),
			col("coefficient", sqlgen.KindDecimal),
		}},
	}

	catalog := make([]*TableInfo, 0, len(tables))
	for _, def := range tables {
		info := &TableInfo{TableDef: def}
		for _, c := range def.Columns {
			if c.FKTable != "" && c.FKTable != def.Name {
				info.Dependencies = append(info.Dependencies, c.FKTable)
			}
		}
		catalog = append(catalog, info)
	}
	return catalog
}

// CatalogByName indexes Catalog by table name.
func CatalogByName() map[string]*TableInfo {
	byName := make(map[string]*TableInfo)
	for _, t := range Catalog() {
		byName[t.Name] = t
	}
	return byName
}
