package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericfisherdev/ytsentiment/internal/domain/model"
)

// DateLayout is the calendar-day format accepted for filter bounds.
const DateLayout = "2006-01-02"

// ErrInvalidFilter is returned for unparseable or inverted filter input.
var ErrInvalidFilter = errors.New("invalid filter")

// ParseFilter builds a FilterSpec from user input. Empty strings leave the
// corresponding constraint unset; "all" is accepted as any language.
func ParseFilter(lang, from, to string) (model.FilterSpec, error) {
	var f model.FilterSpec

	lang = strings.TrimSpace(lang)
	if !strings.EqualFold(lang, "all") {
		f.Language = lang
	}

	var err error
	if f.From, err = parseDay(from); err != nil {
		return model.FilterSpec{}, fmt.Errorf("%w: from: %w", ErrInvalidFilter, err)
	}
	if f.To, err = parseDay(to); err != nil {
		return model.FilterSpec{}, fmt.Errorf("%w: to: %w", ErrInvalidFilter, err)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return model.FilterSpec{}, fmt.Errorf("%w: from %s is after to %s",
			ErrInvalidFilter, f.From.Format(DateLayout), f.To.Format(DateLayout))
	}
	return f, nil
}

func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
