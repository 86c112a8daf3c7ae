package parsers

import (
	"fmt"
	"strings"
)

// EventKind is the closed set of quota event records. All kinds share the
// QuotaEvent model and differ only by tag suffix and payload.
type EventKind string

const (
	EventBalance              EventKind = "balance"
	EventUnblocking           EventKind = "unblocking"
	EventCritical             EventKind = "critical"
	EventExhaustion           EventKind = "exhaustion"
	EventReopening            EventKind = "reopening"
	EventUnsuspension         EventKind = "unsuspension"
	EventClosedAndTransferred EventKind = "closed.and.transferred"
)

// EventKinds lists the kinds in subrecord order.
var EventKinds = []EventKind{
	EventBalance,
	EventUnblocking,
	EventCritical,
	EventExhaustion,
	EventReopening,
	EventUnsuspension,
	EventClosedAndTransferred,
}

// Tag returns the element name, e.g. quota.balance.event.
func (k EventKind) Tag() string {
	return "quota." + string(k) + ".event"
}

// EventKindForTag selects the kind by exact suffix match.
func EventKindForTag(tag string) (EventKind, bool) {
	rest, ok := strings.CutPrefix(tag, "quota.")
	if !ok {
		return "", false
	}
	rest, ok = strings.CutSuffix(rest, ".event")
	if !ok {
		return "", false
	}
	for _, k := range EventKinds {
		if string(k) == rest {
			return k, true
		}
	}
	return "", false
}

var eventPayload = map[EventKind][]Field{
	EventBalance: {
		str("old_balance", "old_balance"),
		str("new_balance", "new_balance"),
		str("imported_amount", "imported_amount"),
	},
	EventUnblocking: {date("unblocking_date", "unblocking_date")},
	EventCritical: {
		flag("critical_state", "critical_state"),
		date("critical_state_change_date", "critical_state_change_date"),
	},
	EventExhaustion:   {date("exhaustion_date", "exhaustion_date")},
	EventReopening:    {date("reopening_date", "reopening_date")},
	EventUnsuspension: {date("unsuspension_date", "unsuspension_date")},
	EventClosedAndTransferred: {
		date("closing_date", "closing_date"),
		str("transferred_amount", "transferred_amount"),
		num("target_quota_definition_sid", "target_quota_definition__sid"),
	},
}

func quotaEvent(k EventKind, subrecord string) *Definition {
	return &Definition{
		Name:          "NewQuotaEventParser",
		Tag:           k.Tag(),
		RecordCode:    "375",
		SubrecordCode: subrecord,
		Model:         "QuotaEvent",
		Fields: fields([]Field{
			num("quota_definition_sid", "quota_definition__sid"),
			stamp("occurrence_timestamp", "occurrence_timestamp"),
		}, eventPayload[k]),
		Identity:  []string{"kind", "quota_definition__sid", "occurrence_timestamp"},
		Links:     []ModelLink{link("QuotaDefinition", "quota.definition", "quota_definition__sid", "sid")},
		NoUpdates: true,
		EventKind: k,
	}
}

var eventDefs = make(map[EventKind]*Definition, len(EventKinds))

func init() {
	for n, k := range EventKinds {
		def := quotaEvent(k, fmt.Sprintf("%02d", n*5))
		eventDefs[k] = def
		Register(def)
	}
}

// QuotaEventParser returns the definition for a quota event element.
func QuotaEventParser(tag string) (*Definition, bool) {
	k, ok := EventKindForTag(tag)
	if !ok {
		return nil, false
	}
	return eventDefs[k], true
}
