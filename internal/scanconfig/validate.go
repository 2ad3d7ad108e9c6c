package scanconfig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/wonny/signalscan/internal/signal"
	"github.com/wonny/signalscan/internal/universe"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// MaxPageSize bounds page_size
const MaxPageSize = 200

var profileNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Page ===
	if cfg.PageSize < 0 || cfg.PageSize > MaxPageSize {
		return ValidationError{"page_size", fmt.Sprintf("must be in [0, %d]", MaxPageSize)}
	}
	if cfg.ChartURL != "" && !strings.Contains(cfg.ChartURL, "{ticker}") {
		return ValidationError{"chart_url", "must contain {ticker}"}
	}

	// === Profiles ===
	for name, spec := range cfg.Profiles {
		field := "profiles." + name
		if !profileNamePattern.MatchString(name) {
			return ValidationError{field, "name must be lower-case [a-z0-9_-]"}
		}
		if _, err := signal.Profile(name); err == nil {
			return ValidationError{field, "must not redefine a built-in profile"}
		}
		if spec.Base != "" {
			if _, err := signal.Profile(spec.Base); err != nil {
				return ValidationError{field + ".base", err.Error()}
			}
		}
		rules, err := spec.Resolve(name)
		if err != nil {
			return ValidationError{field, err.Error()}
		}
		if err := rules.Validate(); err != nil {
			return ValidationError{field, err.Error()}
		}
	}

	if cfg.Profile != "" {
		if _, ok := cfg.Profiles[cfg.Profile]; !ok {
			if _, err := signal.Profile(cfg.Profile); err != nil {
				return ValidationError{"profile", fmt.Sprintf("unknown profile %q", cfg.Profile)}
			}
		}
	}

	// === Markets ===
	if len(cfg.Markets) > 0 {
		if _, err := universe.NewRegistry(cfg.MarketList()); err != nil {
			return ValidationError{"markets", err.Error()}
		}
	}

	// === Refresh ===
	if cfg.Refresh.Schedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(cfg.Refresh.Schedule); err != nil {
			return ValidationError{"refresh.schedule", err.Error()}
		}
	}
	for i, p := range cfg.Refresh.Pages {
		if p.Market == "" {
			return ValidationError{fmt.Sprintf("refresh.pages[%d].market", i), "required"}
		}
		if p.Page < 1 {
			return ValidationError{fmt.Sprintf("refresh.pages[%d].page", i), "must be >= 1"}
		}
	}

	return nil
}

// CheckWarnings reports advisory violations
func CheckWarnings(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.PageSize > 100 {
		warnings = append(warnings, Warning{
			Code:    "LARGE_PAGE",
			Message: fmt.Sprintf("page_size=%d: one scan issues that many sequential requests", cfg.PageSize),
		})
	}

	for name, spec := range cfg.Profiles {
		rules, err := spec.Resolve(name)
		if err != nil {
			continue
		}
		if rules.OverheatPct > 30 {
			warnings = append(warnings, Warning{
				Code:    "LOOSE_OVERHEAT",
				Message: fmt.Sprintf("profile %s: overheat_pct=%.1f rarely triggers", name, rules.OverheatPct),
			})
		}
		if rules.LookbackDays < rules.MinBars*7/5 {
			warnings = append(warnings, Warning{
				Code:    "SHORT_LOOKBACK",
				Message: fmt.Sprintf("profile %s: lookback_days=%d may yield fewer than min_bars=%d trading days", name, rules.LookbackDays, rules.MinBars),
			})
		}
	}

	return warnings
}
