package validator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/parse"
	"github.com/tigerroll/tamato/pkg/taric/parsers"
	"github.com/tigerroll/tamato/pkg/taric/storage"
	"github.com/tigerroll/tamato/pkg/taric/test"
)

// fakeRecords answers LatestApproved from a fixed row set.
type fakeRecords struct {
	storage.Records
	rows []storage.Record
	err  error
}

func (f *fakeRecords) LatestApproved(_ context.Context, q storage.Query, _ storage.View) ([]storage.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []storage.Record
	for _, r := range f.rows {
		if r.Model != q.Model || (q.IdentityKey != "" && r.IdentityKey != q.IdentityKey) {
			continue
		}
		match := true
		for k, v := range q.Attrs {
			if r.Attributes[k] != v {
				match = false
			}
		}
		if match {
			out = append(out, r)
		}
	}
	return out, nil
}

func validate(t *testing.T, records storage.Records, transactions ...[]test.Record) []*parse.ParsedTransaction {
	t.Helper()
	txns, err := parse.Envelope(strings.NewReader(test.Envelope("1", transactions...)))
	require.NoError(t, err)
	require.NoError(t, New(records, storage.View{WorkbasketID: "wb"}).Validate(context.Background(), txns))
	return txns
}

func issuesOf(txns []*parse.ParsedTransaction) []domain.Issue {
	var out []domain.Issue
	for _, t := range txns {
		for _, m := range t.Messages {
			out = append(out, m.Object.Issues()...)
		}
	}
	return out
}

func TestLinkResolvesFromStorage(t *testing.T) {
	records := &fakeRecords{rows: []storage.Record{
		{Model: "QuotaOrderNumber", IdentityKey: "sid=7", Attributes: map[string]string{"sid": "7"}},
	}}
	txns := validate(t, records, []test.Record{test.QuotaDefinition("1", "7")})
	assert.Empty(t, issuesOf(txns))
}

func TestLinkCountsDuplicatesOnce(t *testing.T) {
	// The storage row and the in-import update describe the same identity.
	records := &fakeRecords{rows: []storage.Record{
		{Model: "QuotaOrderNumber", IdentityKey: "sid=7", Attributes: map[string]string{"sid": "7"}},
	}}
	txns := validate(t, records,
		[]test.Record{test.QuotaOrderNumber("7", "091234").As(domain.UpdateTypeUpdate)},
		[]test.Record{test.QuotaDefinition("1", "7")},
	)
	assert.Empty(t, issuesOf(txns))
}

func TestLinkWithSeveralCandidates(t *testing.T) {
	records := &fakeRecords{rows: []storage.Record{
		{ID: 1, Model: "QuotaOrderNumber", IdentityKey: "sid=7"},
		{ID: 2, Model: "QuotaOrderNumber", IdentityKey: "sid=7"},
	}}
	txns := validate(t, records, []test.Record{test.QuotaDefinition("1", "7")})
	issues := issuesOf(txns)
	require.Len(t, issues, 1)
	assert.Equal(t, MsgMultipleMatches, issues[0].Description)
	assert.Equal(t, "quota.order.number", issues[0].RelatedObjectType)
}

func TestFieldIndexFollowsFrontier(t *testing.T) {
	txns, err := parse.Envelope(strings.NewReader(test.Envelope("1",
		[]test.Record{test.QuotaOrderNumber("9", "091234")},
		[]test.Record{test.QuotaOrderNumber("10", "091234")},
	)))
	require.NoError(t, err)
	def := txns[0].Messages[0].Object.Def

	a := newArena(txns)
	a.advance(1)
	assert.Equal(t, []int{0}, a.lookup(def, []string{"order_number"}, []string{"091234"}))
	assert.Empty(t, a.lookup(def, []string{"order_number"}, []string{"000000"}))

	a.advance(2)
	assert.Equal(t, []int{0, 1}, a.lookup(def, []string{"order_number"}, []string{"091234"}))
	assert.Equal(t, []int{1}, a.lookup(def, []string{"sid"}, []string{"10"}))
}

func TestDeletedTargetNoLongerMatches(t *testing.T) {
	txns := validate(t, &fakeRecords{},
		[]test.Record{test.QuotaOrderNumber("7", "091234")},
		[]test.Record{test.QuotaOrderNumber("7", "091234").As(domain.UpdateTypeDelete)},
		[]test.Record{test.QuotaDefinition("1", "7")},
	)
	issues := issuesOf(txns)
	require.Len(t, issues, 1)
	assert.Equal(t, MsgNoMatches, issues[0].Description)
	assert.Equal(t, map[string]string{"sid": "7"}, issues[0].IdentityKeys)
}

func TestSameTransactionDeleteKeepsLink(t *testing.T) {
	records := &fakeRecords{rows: []storage.Record{
		{Model: "QuotaOrderNumber", IdentityKey: "sid=7", Attributes: map[string]string{"sid": "7"}},
		{Model: "QuotaDefinition", IdentityKey: "sid=1", Attributes: map[string]string{"sid": "1"}},
	}}
	txns := validate(t, records, []test.Record{
		test.QuotaOrderNumber("7", "091234").As(domain.UpdateTypeDelete),
		test.QuotaDefinition("1", "7").As(domain.UpdateTypeDelete),
	})
	assert.Empty(t, issuesOf(txns))
}

func TestUpdateAfterDelete(t *testing.T) {
	txns := validate(t, &fakeRecords{},
		[]test.Record{test.AdditionalCodeType("5")},
		[]test.Record{test.AdditionalCodeType("5").As(domain.UpdateTypeDelete)},
		[]test.Record{test.AdditionalCodeType("5").As(domain.UpdateTypeUpdate)},
	)
	issues := issuesOf(txns)
	require.Len(t, issues, 1)
	assert.Equal(t, "Taric object of type AdditionalCodeType has already been deleted, so the UPDATE can't be applied.", issues[0].Description)
}

func TestUpdateOfMissingObject(t *testing.T) {
	txns := validate(t, &fakeRecords{}, []test.Record{test.AdditionalCodeType("5").As(domain.UpdateTypeUpdate)})
	issues := issuesOf(txns)
	require.Len(t, issues, 1)
	assert.Equal(t, "Taric object of type AdditionalCodeType does not exist, so the UPDATE can't be applied.", issues[0].Description)
}

func TestRecreateAfterDelete(t *testing.T) {
	records := &fakeRecords{rows: []storage.Record{
		{Model: "AdditionalCodeType", IdentityKey: "sid=5", Attributes: map[string]string{"sid": "5"}},
	}}
	txns := validate(t, records,
		[]test.Record{test.AdditionalCodeType("5").As(domain.UpdateTypeDelete)},
		[]test.Record{test.AdditionalCodeType("5")},
	)
	assert.Empty(t, issuesOf(txns))
}

func TestChildNeedsParent(t *testing.T) {
	txns := validate(t, &fakeRecords{}, []test.Record{test.GoodsNomenclatureDescriptionPeriod("5", "1", "0101000000")})
	issues := issuesOf(txns)
	require.Len(t, issues, 1)
	assert.Equal(t, "Missing expected parent object NewGoodsNomenclatureDescriptionParser", issues[0].Description)
	assert.Equal(t, "goods.nomenclature.description", issues[0].RelatedObjectType)
	assert.Equal(t, map[string]string{"sid": "5"}, issues[0].IdentityKeys)
}

func TestChildLaterInTransactionCounts(t *testing.T) {
	txns := validate(t, &fakeRecords{},
		[]test.Record{test.GoodsNomenclature("1", "0101000000")},
		[]test.Record{
			test.GoodsNomenclatureDescriptionPeriod("5", "1", "0101000000"),
			test.GoodsNomenclatureDescription("5", "1", "0101000000", "Live horses"),
		},
	)
	assert.Empty(t, issuesOf(txns))
}

func TestStorageFailureIsReturned(t *testing.T) {
	txns, err := parse.Envelope(strings.NewReader(test.Envelope("1", []test.Record{test.FootnoteType("TN")})))
	require.NoError(t, err)
	boom := errors.New("connection refused")
	err = New(&fakeRecords{err: boom}, storage.View{}).Validate(context.Background(), txns)
	assert.ErrorIs(t, err, boom)
}

// measureContext holds the required targets of a measure.
func measureContext() *fakeRecords {
	return &fakeRecords{rows: []storage.Record{
		{Model: "MeasureType", IdentityKey: "sid=103", Attributes: map[string]string{"sid": "103"}},
		{Model: "GeographicalArea", IdentityKey: "sid=400", Attributes: map[string]string{"sid": "400"}},
		{Model: "Regulation", IdentityKey: "role_type=1;regulation_id=R2100010", Attributes: map[string]string{"role_type": "1", "regulation_id": "R2100010"}},
	}}
}

func TestOptionalLinkMayBeAbsent(t *testing.T) {
	txns := validate(t, measureContext(), []test.Record{test.Measure("1", "103", "400", "R2100010", nil)})
	assert.Empty(t, issuesOf(txns))
}

func TestOptionalLinkMustResolveWhenSet(t *testing.T) {
	txns := validate(t, measureContext(), []test.Record{
		test.Measure("1", "103", "400", "R2100010", map[string]string{"goods.nomenclature.sid": "77"}),
	})
	issues := issuesOf(txns)
	require.Len(t, issues, 1)
	assert.Equal(t, MsgNoMatches, issues[0].Description)
	assert.Equal(t, "measure", issues[0].ObjectType)
	assert.Equal(t, "goods.nomenclature", issues[0].RelatedObjectType)
	assert.Equal(t, map[string]string{"sid": "77"}, issues[0].IdentityKeys)
	assert.Equal(t, domain.SeverityError, issues[0].Severity)
}

func TestOptionalLinkResolvesInImport(t *testing.T) {
	txns := validate(t, measureContext(),
		[]test.Record{test.GoodsNomenclature("77", "0101000000")},
		[]test.Record{test.Measure("1", "103", "400", "R2100010", map[string]string{"goods.nomenclature.sid": "77"})},
	)
	assert.Empty(t, issuesOf(txns))
}

func TestLegality(t *testing.T) {
	def := &parsers.Definition{Name: "NewAuditParser", Tag: "audit", Model: "Audit", Identity: []string{"sid"}, NoUpdates: true, NoDeletes: true}
	v := New(&fakeRecords{}, storage.View{})

	cases := map[string]struct {
		updateType domain.UpdateType
		want       string
	}{
		"create": {domain.UpdateTypeCreate, ""},
		"update": {domain.UpdateTypeUpdate, "Taric objects of type Audit can't be updated, only created and deleted."},
		"delete": {domain.UpdateTypeDelete, "Taric objects of type Audit can't be deleted."},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			obj := &parsers.TaricObject{Def: def, Tag: "audit", UpdateType: c.updateType, Values: map[string]any{"sid": int64(3)}}
			ok := v.checkLegality(obj)
			if c.want == "" {
				assert.True(t, ok)
				assert.Empty(t, obj.Issues())
				return
			}
			assert.False(t, ok)
			require.Len(t, obj.Issues(), 1)
			assert.Equal(t, c.want, obj.Issues()[0].Description)
			assert.Equal(t, map[string]string{"sid": "3"}, obj.Issues()[0].IdentityKeys)
		})
	}
}

func TestLatestBefore(t *testing.T) {
	assert.Equal(t, -1, latestBefore(nil, 3))
	assert.Equal(t, 2, latestBefore([]int{0, 2, 5}, 5))
	assert.Equal(t, -1, latestBefore([]int{4}, 4))
}
