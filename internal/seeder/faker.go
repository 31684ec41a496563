package seeder

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type GeneratorOptions struct {
	Seed         uint64
	Year         int
	DayStartHour int
	DayEndHour   int
	SlotMinutes  int
}

// DataGenerator is the fake value source for a run. The same seed yields the
// same sequence of values.
type DataGenerator struct {
	faker   *gofakeit.Faker
	opts    GeneratorOptions
	counter int
}

var emailDomains = []string{"example.com", "school.test", "mail.test", "campus.test"}

func NewDataGenerator(opts GeneratorOptions) *DataGenerator {
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	if opts.Year == 0 {
		opts.Year = time.Now().Year()
	}
	if opts.SlotMinutes <= 0 {
		opts.SlotMinutes = 60
	}
	if opts.DayEndHour <= opts.DayStartHour {
		opts.DayStartHour, opts.DayEndHour = 8, 18
	}
	return &DataGenerator{
		faker: gofakeit.New(opts.Seed),
		opts:  opts,
	}
}

func (g *DataGenerator) Seed() uint64 {
	return g.opts.Seed
}

func (g *DataGenerator) FirstName() string {
	return g.faker.FirstName()
}

func (g *DataGenerator) LastName() string {
	return g.faker.LastName()
}

// Email builds an address from a person's name. The running counter keeps
// addresses unique within a run.
func (g *DataGenerator) Email(first, last string) string {
	g.counter++
	local := asciiLocalPart(first) + "." + asciiLocalPart(last)
	if local == "." {
		local = "user"
	}
	domain := emailDomains[g.faker.IntRange(0, len(emailDomains)-1)]
	return fmt.Sprintf("%s%d@%s", local, g.counter, domain)
}

func (g *DataGenerator) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return g.faker.IntRange(min, max)
}

func (g *DataGenerator) Pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[g.faker.IntRange(0, len(options)-1)]
}

func (g *DataGenerator) PickFloat(options []float64) float64 {
	if len(options) == 0 {
		return 0
	}
	return options[g.faker.IntRange(0, len(options)-1)]
}

// Mark draws uniformly from [min, max] and rounds to two decimal places.
func (g *DataGenerator) Mark(min, max float64) decimal.Decimal {
	floor := decimal.NewFromFloat(min).Round(2)
	ceil := decimal.NewFromFloat(max).Round(2)
	if max <= min {
		return floor
	}
	mark := decimal.NewFromFloat(g.faker.Float64Range(min, max)).Round(2)
	if mark.LessThan(floor) {
		return floor
	}
	if mark.GreaterThan(ceil) {
		return ceil
	}
	return mark
}

// Date returns a calendar date in the configured year, at midnight UTC.
func (g *DataGenerator) Date() time.Time {
	start := time.Date(g.opts.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(g.opts.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	return start.AddDate(0, 0, g.faker.IntRange(0, days))
}

// TimeOfDay returns an offset from midnight that falls on a slot boundary
// within the school day.
func (g *DataGenerator) TimeOfDay() time.Duration {
	slots := (g.opts.DayEndHour - g.opts.DayStartHour) * 60 / g.opts.SlotMinutes
	if slots < 1 {
		slots = 1
	}
	k := g.faker.IntRange(0, slots-1)
	return time.Duration(g.opts.DayStartHour)*time.Hour + time.Duration(k*g.opts.SlotMinutes)*time.Minute
}

// asciiLocalPart lowercases a name, strips accents and drops anything that is
// not a letter or digit.
func asciiLocalPart(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
