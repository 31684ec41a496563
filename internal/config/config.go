package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "schoolseed.config.json"
	EnvPrefix         = "SCHOOLSEED"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

type Config struct {
	Output        string    `json:"output" mapstructure:"output" validate:"required"`
	Report        string    `json:"report,omitempty" mapstructure:"report"`
	IncludeSchema bool      `json:"include_schema,omitempty" mapstructure:"include_schema"`
	Seed          uint64    `json:"seed,omitempty" mapstructure:"seed"` // 0 picks a seed from the clock
	Batch         int       `json:"batch" mapstructure:"batch" validate:"min=1"`
	Database      Database  `json:"database" mapstructure:"database"`
	Roster        Roster    `json:"roster" mapstructure:"roster"`
	Scheduler     Scheduler `json:"scheduler" mapstructure:"scheduler"`
	Marks         Marks     `json:"marks" mapstructure:"marks"`
	Catalog       Catalog   `json:"catalog,omitempty" mapstructure:"catalog"`
	Log           Log       `json:"log" mapstructure:"log"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider" validate:"required"`
}

type Roster struct {
	StartYear        int `json:"start_year" mapstructure:"start_year" validate:"min=1"`
	Years            int `json:"years" mapstructure:"years" validate:"min=1"`
	Teachers         int `json:"teachers" mapstructure:"teachers" validate:"min=1"`
	Classes          int `json:"classes" mapstructure:"classes" validate:"min=1"`
	StudentsPerClass int `json:"students_per_class" mapstructure:"students_per_class" validate:"min=1"`
	Subjects         int `json:"subjects" mapstructure:"subjects" validate:"min=1"`
	Rooms            int `json:"rooms" mapstructure:"rooms" validate:"min=1"`
}

type Scheduler struct {
	OverlapRoomID    int  `json:"overlap_room_id" mapstructure:"overlap_room_id" validate:"min=0"` // 0 disables the overlap room
	TeacherConflicts bool `json:"teacher_conflicts" mapstructure:"teacher_conflicts"`
	Year             int  `json:"year" mapstructure:"year" validate:"min=1"`
	DayStartHour     int  `json:"day_start_hour" mapstructure:"day_start_hour" validate:"min=0,max=23"`
	DayEndHour       int  `json:"day_end_hour" mapstructure:"day_end_hour" validate:"min=1,max=24"`
	SlotMinutes      int  `json:"slot_minutes" mapstructure:"slot_minutes" validate:"min=1,max=1440"`
	SessionsPerSlot  int  `json:"sessions_per_slot" mapstructure:"sessions_per_slot" validate:"min=0"`
}

type Marks struct {
	Min          float64   `json:"min" mapstructure:"min" validate:"min=0"`
	Max          float64   `json:"max" mapstructure:"max" validate:"min=0"`
	Coefficients []float64 `json:"coefficients" mapstructure:"coefficients" validate:"required,min=1,dive,gt=0"`
}

type Catalog struct {
	ModuleNames  []string `json:"module_names,omitempty" mapstructure:"module_names" validate:"omitempty,dive,required"`
	SubjectNames []string `json:"subject_names,omitempty" mapstructure:"subject_names" validate:"omitempty,dive,required"`
	Statuses     []string `json:"statuses,omitempty" mapstructure:"statuses" validate:"omitempty,dive,required"`
}

type Log struct {
	Level  string `json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" mapstructure:"format" validate:"oneof=console json"`
}

// SetDefaults registers every default on v so that environment variables can
// override keys that are absent from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output", "generated_data.sql")
	v.SetDefault("report", "")
	v.SetDefault("include_schema", false)
	v.SetDefault("seed", 0)
	v.SetDefault("batch", 1)
	v.SetDefault("database.provider", string(sqlgen.Postgres))

	v.SetDefault("roster.start_year", 2024)
	v.SetDefault("roster.years", 10)
	v.SetDefault("roster.teachers", 10)
	v.SetDefault("roster.classes", 10)
	v.SetDefault("roster.students_per_class", 10)
	v.SetDefault("roster.subjects", 10)
	v.SetDefault("roster.rooms", 10)

	v.SetDefault("scheduler.overlap_room_id", 0)
	v.SetDefault("scheduler.teacher_conflicts", false)
	v.SetDefault("scheduler.year", time.Now().Year())
	v.SetDefault("scheduler.day_start_hour", 8)
	v.SetDefault("scheduler.day_end_hour", 18)
	v.SetDefault("scheduler.slot_minutes", 60)
	v.SetDefault("scheduler.sessions_per_slot", 10)

	v.SetDefault("marks.min", 10.0)
	v.SetDefault("marks.max", 20.0)
	v.SetDefault("marks.coefficients", []float64{1.0, 1.5, 2.0, 2.5, 3.0})

	v.SetDefault("catalog.module_names", []string{})
	v.SetDefault("catalog.subject_names", []string{})
	v.SetDefault("catalog.statuses", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// BindEnv lets SCHOOLSEED_ROSTER_TEACHERS and friends override config keys.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadWith(viper.GetViper())
}

func LoadWith(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Provider = strings.ToLower(strings.TrimSpace(cfg.Database.Provider))
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Dialect(); err != nil {
		return err
	}
	if c.Scheduler.OverlapRoomID > c.Roster.Rooms {
		return fmt.Errorf("scheduler.overlap_room_id %d exceeds roster.rooms %d",
			c.Scheduler.OverlapRoomID, c.Roster.Rooms)
	}
	if c.Scheduler.DayStartHour >= c.Scheduler.DayEndHour {
		return fmt.Errorf("scheduler.day_start_hour (%d) must be before day_end_hour (%d)",
			c.Scheduler.DayStartHour, c.Scheduler.DayEndHour)
	}
	if (c.Scheduler.DayEndHour-c.Scheduler.DayStartHour)*60 < c.Scheduler.SlotMinutes {
		return fmt.Errorf("scheduler.slot_minutes %d does not fit in the school day", c.Scheduler.SlotMinutes)
	}
	if c.Marks.Min > c.Marks.Max {
		return fmt.Errorf("marks.min (%g) must not exceed marks.max (%g)", c.Marks.Min, c.Marks.Max)
	}

	return nil
}

func (c *Config) Dialect() (sqlgen.Dialect, error) {
	return sqlgen.ParseDialect(c.Database.Provider)
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	cfg, err := LoadWith(viper.New())
	if err != nil {
		panic(err)
	}
	return cfg
}

// WriteFile saves cfg as indented JSON, refusing to overwrite an existing file.
func WriteFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
