package parsers

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

var log = logger.For("parsers")

const dateTimeLayout = "2006-01-02T15:04:05"

var dateTimeLayouts = []string{dateTimeLayout, "2006-01-02 15:04:05", time.RFC3339, domain.DateLayout}

var boolTokens = map[string]bool{
	"y": true, "1": true, "true": true,
	"n": false, "0": false, "false": false,
}

// Header carries the record envelope values of one message.
type Header struct {
	TransactionID  string
	RecordCode     string
	SubrecordCode  string
	SequenceNumber int64
	UpdateType     domain.UpdateType
	Tag            string
}

// Populate builds a TaricObject from raw key/value pairs. It has no side
// effects: the same input always yields the same values. Values that fail
// coercion are left out and recorded as ERROR issues.
func Populate(def *Definition, h Header, data map[string]string) *TaricObject {
	tag := h.Tag
	if tag == "" {
		tag = def.Tag
	}
	obj := &TaricObject{
		Def:            def,
		TransactionID:  h.TransactionID,
		RecordCode:     h.RecordCode,
		SubrecordCode:  h.SubrecordCode,
		SequenceNumber: h.SequenceNumber,
		UpdateType:     h.UpdateType,
		Tag:            tag,
		Values:         map[string]any{},
	}
	if def.EventKind != "" {
		obj.Values["kind"] = string(def.EventKind)
	}

	ranges := map[string]*rangeParts{}
	var problems []string
	for raw, value := range data {
		f, ok := def.field(raw)
		if !ok {
			log.Debugf("%s: ignoring unmapped field %s", def.Name, raw)
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch f.Kind {
		case KindRangeLower, KindRangeUpper:
			d, err := time.Parse(domain.DateLayout, value)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %q is not a date", raw, value))
				continue
			}
			parts := ranges[f.Name]
			if parts == nil {
				parts = &rangeParts{}
				ranges[f.Name] = parts
			}
			if f.Kind == KindRangeLower {
				parts.lower = &d
			} else {
				parts.upper = &d
			}
		default:
			v, err := coerce(f.Kind, value)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", raw, err))
				continue
			}
			obj.Values[f.Name] = v
		}
	}
	for name, parts := range ranges {
		if parts.lower == nil {
			problems = append(problems, fmt.Sprintf("%s has an end date but no start date", name))
			continue
		}
		obj.Values[name] = domain.DateRange{Lower: *parts.lower, Upper: parts.upper}
	}
	sort.Strings(problems)
	for _, p := range problems {
		obj.AddIssue(domain.Issue{
			Description: "Invalid field value " + p,
			Severity:    domain.SeverityError,
		})
	}
	return obj
}

type rangeParts struct {
	lower *time.Time
	upper *time.Time
}

func coerce(kind Kind, value string) (any, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", value)
		}
		return n, nil
	case KindBool:
		b, ok := boolTokens[strings.ToLower(value)]
		if !ok {
			return nil, fmt.Errorf("%q is not a flag", value)
		}
		return b, nil
	case KindDate:
		d, err := time.Parse(domain.DateLayout, value)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date", value)
		}
		return d, nil
	case KindDateTime:
		for _, layout := range dateTimeLayouts {
			if d, err := time.Parse(layout, value); err == nil {
				return d, nil
			}
		}
		return nil, fmt.Errorf("%q is not a timestamp", value)
	}
	return value, nil
}
