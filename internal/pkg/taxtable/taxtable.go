// Package taxtable loads versioned statutory tables from YAML.
package taxtable

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/practice-payroll/internal/domain/statutory"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const supportedVersion = 1

type document struct {
	Version  int        `yaml:"version"`
	TaxYears []yearNode `yaml:"tax_years"`
}

type yearNode struct {
	ID            int         `yaml:"id"`
	Start         string      `yaml:"start"`
	End           string      `yaml:"end"`
	Bands         []bandNode  `yaml:"bands"`
	Rebates       rebateNode  `yaml:"rebates"`
	MedicalCredit medicalNode `yaml:"medical_credit"`
	UIF           uifNode     `yaml:"uif"`
	SDL           sdlNode     `yaml:"sdl"`
}

type bandNode struct {
	Lower string `yaml:"lower"`
	Upper string `yaml:"upper"`
	Base  string `yaml:"base"`
	Rate  string `yaml:"rate"`
}

type rebateNode struct {
	Primary      string `yaml:"primary"`
	Secondary    string `yaml:"secondary"`
	SecondaryAge int    `yaml:"secondary_age"`
	Tertiary     string `yaml:"tertiary"`
	TertiaryAge  int    `yaml:"tertiary_age"`
}

type medicalNode struct {
	MainMember     string `yaml:"main_member"`
	FirstDependent string `yaml:"first_dependent"`
	Dependent      string `yaml:"dependent"`
}

type uifNode struct {
	EmployeeRate   string `yaml:"employee_rate"`
	EmployerRate   string `yaml:"employer_rate"`
	MonthlyCeiling string `yaml:"monthly_ceiling"`
}

type sdlNode struct {
	Rate               string `yaml:"rate"`
	ExemptionThreshold string `yaml:"exemption_threshold"`
}

// Parse decodes and validates a tax table document.
func Parse(b []byte) ([]statutory.TaxYear, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode tax tables: %w", err)
	}
	if doc.Version != supportedVersion {
		return nil, statutory.ErrUnsupportedTableVersion
	}
	if len(doc.TaxYears) == 0 {
		return nil, statutory.ErrNoTaxYears
	}

	years := make([]statutory.TaxYear, 0, len(doc.TaxYears))
	seen := make(map[int]bool)
	for _, node := range doc.TaxYears {
		if seen[node.ID] {
			return nil, statutory.NewConfigurationError(node.ID, "defined more than once")
		}
		seen[node.ID] = true

		year, err := node.toTaxYear()
		if err != nil {
			return nil, err
		}
		years = append(years, year)
	}

	sort.Slice(years, func(i, j int) bool { return years[i].ID < years[j].ID })
	for i := 1; i < len(years); i++ {
		if !years[i].Start.After(years[i-1].End) {
			return nil, statutory.NewConfigurationError(years[i].ID,
				fmt.Sprintf("starts %s, inside tax year %d", years[i].Start.Format("2006-01-02"), years[i-1].ID))
		}
	}
	return years, nil
}

// LoadFile reads and parses a tax table file.
func LoadFile(path string) ([]statutory.TaxYear, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tax tables: %w", err)
	}
	return Parse(b)
}

func (n yearNode) toTaxYear() (statutory.TaxYear, error) {
	p := parser{year: n.ID}

	year := statutory.TaxYear{
		ID:    n.ID,
		Start: p.date("start", n.Start),
		End:   p.date("end", n.End),
		Rebates: statutory.Rebates{
			Primary:      p.amount("rebates.primary", n.Rebates.Primary),
			Secondary:    p.amount("rebates.secondary", n.Rebates.Secondary),
			SecondaryAge: n.Rebates.SecondaryAge,
			Tertiary:     p.amount("rebates.tertiary", n.Rebates.Tertiary),
			TertiaryAge:  n.Rebates.TertiaryAge,
		},
		MedicalCredit: statutory.MedicalCreditRates{
			MainMember: p.amount("medical_credit.main_member", n.MedicalCredit.MainMember),
			Dependent:  p.amount("medical_credit.dependent", n.MedicalCredit.Dependent),
		},
		UIF: statutory.UIFRates{
			EmployeeRate:   p.rate("uif.employee_rate", n.UIF.EmployeeRate),
			EmployerRate:   p.rate("uif.employer_rate", n.UIF.EmployerRate),
			MonthlyCeiling: p.amount("uif.monthly_ceiling", n.UIF.MonthlyCeiling),
		},
		SDL: statutory.SDLRates{
			Rate:               p.rate("sdl.rate", n.SDL.Rate),
			ExemptionThreshold: p.amount("sdl.exemption_threshold", n.SDL.ExemptionThreshold),
		},
	}
	if n.MedicalCredit.FirstDependent != "" {
		first := p.amount("medical_credit.first_dependent", n.MedicalCredit.FirstDependent)
		year.MedicalCredit.FirstDependent = &first
	}

	for i, b := range n.Bands {
		field := fmt.Sprintf("bands[%d]", i)
		band := statutory.Band{
			Lower: p.amount(field+".lower", b.Lower),
			Base:  p.amount(field+".base", b.Base),
			Rate:  p.rate(field+".rate", b.Rate),
		}
		if b.Upper != "" {
			upper := p.amount(field+".upper", b.Upper)
			band.Upper = &upper
		}
		year.Bands = append(year.Bands, band)
	}

	if p.err != nil {
		return statutory.TaxYear{}, p.err
	}
	if err := validate(year); err != nil {
		return statutory.TaxYear{}, err
	}
	return year, nil
}

func validate(y statutory.TaxYear) error {
	if !y.End.After(y.Start) {
		return statutory.NewConfigurationError(y.ID, "end must be after start")
	}
	if len(y.Bands) == 0 {
		return statutory.NewConfigurationError(y.ID, "no tax bands")
	}
	if !y.Bands[0].Lower.IsZero() {
		return statutory.NewConfigurationError(y.ID, "first band must start at zero")
	}
	for i, band := range y.Bands {
		last := i == len(y.Bands)-1
		switch {
		case last && band.Upper != nil:
			return statutory.NewConfigurationError(y.ID, "top band must be open-ended")
		case !last && band.Upper == nil:
			return statutory.NewConfigurationError(y.ID, fmt.Sprintf("band %d has no upper bound", i))
		case !last && !band.Upper.GreaterThan(band.Lower):
			return statutory.NewConfigurationError(y.ID, fmt.Sprintf("band %d upper bound must exceed lower bound", i))
		case !last && !band.Upper.Equal(y.Bands[i+1].Lower):
			return statutory.NewConfigurationError(y.ID, fmt.Sprintf("band %d is not contiguous with band %d", i, i+1))
		}
	}
	if y.Rebates.TertiaryAge != 0 && y.Rebates.TertiaryAge < y.Rebates.SecondaryAge {
		return statutory.NewConfigurationError(y.ID, "tertiary rebate age below secondary rebate age")
	}
	if y.UIF.MonthlyCeiling.IsZero() {
		return statutory.NewConfigurationError(y.ID, "uif monthly ceiling is required")
	}
	return nil
}

// CheckContinuity reports bands whose base tax differs from the tax accrued by
// the bands below it.
func CheckContinuity(y statutory.TaxYear) []string {
	var problems []string
	for i := 1; i < len(y.Bands); i++ {
		prev := y.Bands[i-1]
		want := prev.Base.Add(prev.Upper.Sub(prev.Lower).Mul(prev.Rate))
		if !want.Equal(y.Bands[i].Base) {
			problems = append(problems, fmt.Sprintf("tax year %d band %d: base %s, accrued %s",
				y.ID, i, y.Bands[i].Base.String(), want.String()))
		}
	}
	return problems
}

type parser struct {
	year int
	err  error
}

func (p *parser) amount(field, raw string) decimal.Decimal {
	d := p.decimal(field, raw)
	if p.err == nil && d.IsNegative() {
		p.err = statutory.NewConfigurationError(p.year, field+" must not be negative")
	}
	return d
}

func (p *parser) rate(field, raw string) decimal.Decimal {
	d := p.amount(field, raw)
	if p.err == nil && d.GreaterThan(decimal.NewFromInt(1)) {
		p.err = statutory.NewConfigurationError(p.year, field+" must be a fraction between 0 and 1")
	}
	return d
}

func (p *parser) decimal(field, raw string) decimal.Decimal {
	if p.err != nil {
		return decimal.Zero
	}
	if raw == "" {
		p.err = statutory.NewConfigurationError(p.year, field+" is required")
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		p.err = statutory.NewConfigurationError(p.year, fmt.Sprintf("%s: invalid decimal %q", field, raw))
		return decimal.Zero
	}
	return d
}

func (p *parser) date(field, raw string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		p.err = statutory.NewConfigurationError(p.year, fmt.Sprintf("%s: invalid date %q", field, raw))
		return time.Time{}
	}
	return t
}

// Registry is a reloadable TableProvider.
type Registry struct {
	mu    sync.RWMutex
	years map[int]statutory.TaxYear
	// ordered holds the same years sorted by ID so date lookups are stable.
	ordered []statutory.TaxYear
}

func NewRegistry(years []statutory.TaxYear) *Registry {
	r := &Registry{}
	r.Replace(years)
	return r
}

// LoadRegistry builds a registry from a tax table file.
func LoadRegistry(path string) (*Registry, error) {
	years, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(years), nil
}

// Replace swaps in a new set of tax years.
func (r *Registry) Replace(years []statutory.TaxYear) {
	m := make(map[int]statutory.TaxYear, len(years))
	for _, y := range years {
		m[y.ID] = y
	}
	ordered := make([]statutory.TaxYear, 0, len(m))
	for _, y := range m {
		ordered = append(ordered, y)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	r.mu.Lock()
	r.years = m
	r.ordered = ordered
	r.mu.Unlock()
}

// Reload re-reads path. The current tables stay in place when the file is invalid.
func (r *Registry) Reload(path string) error {
	years, err := LoadFile(path)
	if err != nil {
		return err
	}
	r.Replace(years)
	return nil
}

func (r *Registry) ForYear(id int) (statutory.TaxYear, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	y, ok := r.years[id]
	if !ok {
		return statutory.TaxYear{}, statutory.NewConfigurationError(id, "no tax table configured")
	}
	return y, nil
}

func (r *Registry) ForDate(date time.Time) (statutory.TaxYear, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, y := range r.ordered {
		if y.Contains(date) {
			return y, nil
		}
	}
	return statutory.TaxYear{}, statutory.NewConfigurationError(date.Year(), "no tax table covers "+date.Format("2006-01-02"))
}

// IDs lists configured tax years in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.years))
	for id := range r.years {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
