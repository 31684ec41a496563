package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/config"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/export"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/logger"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/schedule"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/seeder"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
)

// generateBindings maps config keys to generate flags.
var generateBindings = map[string]string{
	"output":                      "out",
	"report":                      "report",
	"include_schema":              "with-schema",
	"seed":                        "seed",
	"batch":                       "batch",
	"database.provider":           "dialect",
	"roster.years":                "years",
	"roster.teachers":             "teachers",
	"roster.classes":              "classes",
	"roster.students_per_class":   "students-per-class",
	"roster.subjects":             "subjects",
	"roster.rooms":                "rooms",
	"scheduler.sessions_per_slot": "sessions-per-slot",
	"scheduler.overlap_room_id":   "overlap-room",
	"scheduler.teacher_conflicts": "teacher-conflicts",
	"scheduler.year":              "year",
}

func newGenerateCmd(c *cli) *cobra.Command {
	var verbose, dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the school dataset as SQL INSERT statements",
		Long: `Generates years, teachers, modules, subjects, classes, students, scheduled
class sessions, attendance and marks, and writes them as INSERT statements in
dependency order, one statement per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.load(cmd, generateBindings)
			if err != nil {
				return err
			}
			return runGenerate(cmd, cfg, verbose, dryRun)
		},
	}

	d := config.Default()
	cmd.Flags().StringP("out", "o", d.Output, "Output SQL file")
	cmd.Flags().String("report", "", "Write a YAML run report to this file")
	cmd.Flags().Bool("with-schema", false, "Prepend CREATE TABLE statements to the output")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks one from the clock)")
	cmd.Flags().Int("batch", d.Batch, "Rows per INSERT statement")
	cmd.Flags().String("dialect", d.Database.Provider, "SQL dialect (postgresql, mysql, sqlite)")
	cmd.Flags().Int("years", d.Roster.Years, "Number of academic years")
	cmd.Flags().Int("teachers", d.Roster.Teachers, "Number of teachers")
	cmd.Flags().Int("classes", d.Roster.Classes, "Number of classes")
	cmd.Flags().Int("students-per-class", d.Roster.StudentsPerClass, "Students enrolled in each class")
	cmd.Flags().Int("subjects", d.Roster.Subjects, "Subjects taught to each class")
	cmd.Flags().Int("rooms", d.Roster.Rooms, "Number of rooms")
	cmd.Flags().Int("sessions-per-slot", d.Scheduler.SessionsPerSlot, "Candidate sessions per class, subject and teacher")
	cmd.Flags().Int("overlap-room", d.Scheduler.OverlapRoomID, "Room that may host several classes at once (0 for none)")
	cmd.Flags().Bool("teacher-conflicts", false, "Also refuse to book a teacher twice at the same instant")
	cmd.Flags().Int("year", d.Scheduler.Year, "Calendar year session dates are drawn from")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Log scheduler decisions at debug level")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the SQL to stdout instead of writing a file")

	return cmd
}

func runGenerate(cmd *cobra.Command, cfg *config.Config, verbose, dryRun bool) error {
	dialect, err := cfg.Dialect()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	renderer := sqlgen.NewRenderer(dialect)
	out := cmd.OutOrStdout()

	var sink seeder.Sink
	var fileSink *export.FileSink
	memory := &export.MemorySink{}
	if dryRun {
		sink = memory
		out = cmd.ErrOrStderr()
	} else {
		fileSink, err = export.NewFileSink(cfg.Output, renderer)
		if err != nil {
			return err
		}
		defer fileSink.Close()
		sink = fileSink
	}

	if cfg.IncludeSchema {
		ddl, err := seeder.Schema(dialect)
		if err != nil {
			return err
		}
		if err := writePreamble(cmd, fileSink, ddl); err != nil {
			return err
		}
	}

	gen := seeder.NewDataGenerator(seeder.GeneratorOptions{
		Seed:         cfg.Seed,
		Year:         cfg.Scheduler.Year,
		DayStartHour: cfg.Scheduler.DayStartHour,
		DayEndHour:   cfg.Scheduler.DayEndHour,
		SlotMinutes:  cfg.Scheduler.SlotMinutes,
	})
	scheduler := schedule.New(gen, schedule.Options{
		OverlapRoomID:    cfg.Scheduler.OverlapRoomID,
		TeacherConflicts: cfg.Scheduler.TeacherConflicts,
	}, log)

	log.Info("generating dataset",
		zap.String("dialect", string(dialect)),
		zap.Uint64("seed", gen.Seed()),
		zap.Int("batch", cfg.Batch),
	)

	s := seeder.New(seedConfig(cfg), gen, scheduler, sink, log)
	s.SetOutput(out)
	summary, err := s.Seed()
	if err != nil {
		return err
	}

	target := "stdout"
	if dryRun {
		for _, stmt := range memory.Statements {
			line, err := renderer.Render(stmt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	} else {
		if err := fileSink.Close(); err != nil {
			return err
		}
		target = fileSink.Path()
	}

	if cfg.Report != "" {
		report := export.NewReport(target, string(dialect), gen.Seed())
		report.Statements = summary.Statements
		for table, rows := range summary.Rows {
			report.Tables[table] = rows
		}
		report.Sessions = export.SessionReport{
			Requested: summary.Schedule.Requested,
			Accepted:  summary.Schedule.Accepted,
		}
		if len(summary.Schedule.Rejected) > 0 {
			report.Sessions.Rejected = make(map[string]int, len(summary.Schedule.Rejected))
			for reason, n := range summary.Schedule.Rejected {
				report.Sessions.Rejected[string(reason)] = n
			}
		}
		if err := export.WriteReport(cfg.Report, report); err != nil {
			return err
		}
		log.Debug("report written", zap.String("path", cfg.Report))
	}

	color.New(color.FgGreen).Fprintf(out, "✅ Wrote %d statements (%d rows) to %s\n",
		summary.Statements, summary.TotalRows(), target)
	color.New(color.FgWhite).Fprintf(out, "   seed: %d\n", gen.Seed())
	return nil
}

// writePreamble writes the DDL ahead of the INSERTs, to the file or to stdout on a dry run.
func writePreamble(cmd *cobra.Command, fileSink *export.FileSink, ddl []string) error {
	for _, stmt := range ddl {
		if fileSink == nil {
			fmt.Fprintln(cmd.OutOrStdout(), stmt)
			continue
		}
		if err := fileSink.WriteLine(stmt); err != nil {
			return err
		}
	}
	return nil
}

func seedConfig(cfg *config.Config) seeder.SeedConfig {
	return seeder.SeedConfig{
		StartYear:        cfg.Roster.StartYear,
		Years:            cfg.Roster.Years,
		Teachers:         cfg.Roster.Teachers,
		Classes:          cfg.Roster.Classes,
		StudentsPerClass: cfg.Roster.StudentsPerClass,
		Subjects:         cfg.Roster.Subjects,
		Rooms:            cfg.Roster.Rooms,
		SessionsPerSlot:  cfg.Scheduler.SessionsPerSlot,
		Batch:            cfg.Batch,
		MarkMin:          cfg.Marks.Min,
		MarkMax:          cfg.Marks.Max,
		Coefficients:     cfg.Marks.Coefficients,
		Statuses:         cfg.Catalog.Statuses,
		ModuleNames:      cfg.Catalog.ModuleNames,
		SubjectNames:     cfg.Catalog.SubjectNames,
	}
}
