package parsers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
)

func quotaDefinitionData() map[string]string {
	return map[string]string{
		"quota_definition_sid":   "123",
		"quota_order_number_sid": "9",
		"quota_order_number_id":  "091234",
		"validity_start_date":    "2021-01-01",
		"validity_end_date":      "2021-12-31",
		"critical_state":         "Y",
		"critical_threshold":     "90",
		"volume":                 "1000.000",
		"unexpected_field":       "ignored",
	}
}

func TestPopulateCoercesTypes(t *testing.T) {
	def, ok := ByCode("370", "00")
	require.True(t, ok)

	obj := Populate(def, Header{TransactionID: "1", RecordCode: "370", SubrecordCode: "00", UpdateType: domain.UpdateTypeCreate}, quotaDefinitionData())

	assert.Empty(t, obj.Issues())
	assert.Equal(t, int64(123), obj.Values["sid"])
	assert.Equal(t, int64(9), obj.Values["order_number__sid"])
	assert.Equal(t, true, obj.Values["quota_critical"])
	assert.Equal(t, "1000.000", obj.Values["volume"])
	assert.NotContains(t, obj.Values, "unexpected_field")

	r, ok := obj.Values[ValidBetween].(domain.DateRange)
	require.True(t, ok)
	assert.True(t, r.Lower.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, r.Upper)
	assert.Equal(t, "2021-01-01/2021-12-31", obj.Text(ValidBetween))
	assert.Equal(t, "sid=123", obj.IdentityKey())
	assert.Equal(t, "quota.definition", obj.Tag)
}

func TestPopulateIsIdempotent(t *testing.T) {
	def, _ := ByCode("370", "00")
	h := Header{TransactionID: "1", RecordCode: "370", SubrecordCode: "00", UpdateType: domain.UpdateTypeCreate}

	first := Populate(def, h, quotaDefinitionData())
	second := Populate(def, h, quotaDefinitionData())

	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Attributes(), second.Attributes())
	assert.Equal(t, first.IdentityKey(), second.IdentityKey())
}

func TestPopulateRecordsBadValuesAsIssues(t *testing.T) {
	def, _ := ByCode("370", "00")
	obj := Populate(def, Header{UpdateType: domain.UpdateTypeCreate}, map[string]string{
		"quota_definition_sid": "abc",
		"critical_state":       "maybe",
		"validity_end_date":    "2021-12-31",
	})

	require.Len(t, obj.Issues(), 3)
	for _, issue := range obj.Issues() {
		assert.Equal(t, domain.SeverityError, issue.Severity)
		assert.Equal(t, "quota.definition", issue.ObjectType)
	}
	assert.NotContains(t, obj.Values, "sid")
	assert.NotContains(t, obj.Values, ValidBetween)
}

func TestQuotaEventsShareOneModel(t *testing.T) {
	kind, ok := EventKindForTag("quota.closed.and.transferred.event")
	require.True(t, ok)
	assert.Equal(t, EventClosedAndTransferred, kind)
	_, ok = EventKindForTag("quota.mystery.event")
	assert.False(t, ok)

	reopening, ok := QuotaEventParser("quota.reopening.event")
	require.True(t, ok)
	assert.Equal(t, EventReopening, reopening.EventKind)
	assert.Equal(t, "20", reopening.SubrecordCode)
	_, ok = QuotaEventParser("quota.mystery.event")
	assert.False(t, ok)

	balance, ok := ByTag("quota.balance.event")
	require.True(t, ok)
	assert.Equal(t, "00", balance.SubrecordCode)
	assert.False(t, balance.UpdatesAllowed())

	obj := Populate(balance, Header{UpdateType: domain.UpdateTypeCreate}, map[string]string{
		"quota_definition_sid": "5",
		"occurrence_timestamp": "2021-03-04T10:11:12",
	})
	assert.Equal(t, "kind=balance;quota_definition__sid=5;occurrence_timestamp=2021-03-04T10:11:12", obj.IdentityKey())

	def, err := ParserByModel("QuotaEvent")
	require.NoError(t, err)
	assert.Equal(t, "quota.balance.event", def.Tag)
}

func TestRegistryLookups(t *testing.T) {
	_, err := ParserByModel("NoSuchModel")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrParserNotRegistered))
	assert.Panics(t, func() { MustParserByModel("NoSuchModel") })

	desc := MustParserByModel("GoodsNomenclatureDescription")
	assert.Equal(t, "goods.nomenclature.description", desc.Tag)
	children := ChildParsers(desc)
	require.Len(t, children, 1)
	assert.Equal(t, "NewGoodsNomenclatureDescriptionPeriodParser", children[0].Name)
	assert.True(t, children[0].Parent.Required)

	footnoteType := MustParserByModel("FootnoteType")
	assert.False(t, footnoteType.UpdatesAllowed())
	require.Len(t, ChildParsers(footnoteType), 1)
	assert.False(t, ChildParsers(footnoteType)[0].Parent.Required)

	assert.Panics(t, func() {
		Register(&Definition{Name: "Dup", Tag: "brand.new", RecordCode: "100", SubrecordCode: "00"})
	})
}

func TestGoodsNomenclatureRecordCodes(t *testing.T) {
	cases := map[string]string{
		"40000": "goods.nomenclature",
		"40005": "goods.nomenclature.indent",
		"40015": "goods.nomenclature.description",
		"40020": "footnote.association.goods.nomenclature",
		"40035": "goods.nomenclature.origin",
		"40040": "goods.nomenclature.successor",
	}
	for code, tag := range cases {
		def, ok := ByCode(code[:3], code[3:])
		require.True(t, ok, code)
		assert.Equal(t, tag, def.Tag, code)
		assert.Equal(t, code, def.Code())
	}
}

func TestEveryLinkTargetsARegisteredModel(t *testing.T) {
	for _, def := range All() {
		for _, l := range def.Links {
			target, err := ParserByModel(l.Model)
			require.NoError(t, err, def.Name)
			assert.Equal(t, l.Tag, target.Tag, def.Name)
			for _, f := range l.Fields {
				assert.True(t, hasField(def, f.Local), "%s lacks %s", def.Name, f.Local)
				assert.True(t, hasField(target, f.Target), "%s lacks %s", target.Name, f.Target)
			}
		}
		for _, name := range def.Identity {
			if name == "kind" {
				continue
			}
			assert.True(t, hasField(def, name), "%s identity %s", def.Name, name)
		}
	}
}

func hasField(def *Definition, name string) bool {
	for _, f := range def.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func TestUnknownStub(t *testing.T) {
	obj := Unknown(Header{Tag: "mystery.record", RecordCode: "999", SubrecordCode: "00", UpdateType: domain.UpdateTypeCreate, TransactionID: "4"})
	assert.False(t, obj.Def.Persistable())
	require.Len(t, obj.Issues(), 1)
	assert.Equal(t, "mystery.record", obj.Issues()[0].ObjectType)
	assert.Equal(t, "4", obj.Issues()[0].TransactionID)
}
