package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/test"
)

func TestEnvelopeKeepsDocumentOrder(t *testing.T) {
	xml := test.Envelope("1",
		[]test.Record{
			test.Create("additional.code.type", "120", "00", map[string]string{
				"additional.code.type.id": "5",
				"application.code":        "1",
				"validity.start.date":     "2021-01-01",
			}),
		},
		[]test.Record{
			test.Create("additional.code", "245", "00", map[string]string{
				"additional.code.sid":     "77",
				"additional.code.type.id": "5",
				"additional.code":         "123",
				"validity.start.date":     "2021-01-01",
			}),
			test.Delete("mystery.record", "999", "00", map[string]string{"x": "1"}),
		},
	)

	txns, err := Envelope(strings.NewReader(xml))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "1", txns[0].ID)
	assert.Equal(t, 0, txns[0].Index)
	require.Len(t, txns[0].Messages, 1)
	first := txns[0].Messages[0]
	assert.Equal(t, "120", first.RecordCode)
	assert.Equal(t, domain.UpdateTypeCreate, first.UpdateType)
	assert.Equal(t, "5", first.Object.Text("sid"))
	assert.Empty(t, first.Object.Issues())

	require.Len(t, txns[1].Messages, 2)
	code := txns[1].Messages[0]
	assert.Equal(t, int64(77), code.Object.Values["sid"])
	assert.Equal(t, "5", code.Object.Text("type__sid"))
	assert.Equal(t, int64(2), code.SequenceNumber)

	stub := txns[1].Messages[1]
	assert.True(t, stub.Object.Def.Stub)
	assert.Equal(t, domain.UpdateTypeDelete, stub.UpdateType)
	require.Len(t, stub.Object.Issues(), 1)
}

func TestEnvelopeRejectsMalformedXML(t *testing.T) {
	_, err := Envelope(strings.NewReader(`<env:envelope xmlns:env="urn:publicid:-:DGTAXUD:GENERAL:ENVELOPE:1.0"><env:transaction>`))
	assert.Error(t, err)
}

func TestRecordWithBadUpdateType(t *testing.T) {
	xml := strings.Replace(test.Envelope("1", []test.Record{
		test.Create("footnote.type", "100", "00", map[string]string{"footnote.type.id": "TN", "validity.start.date": "2021-01-01"}),
	}), "<update.type>3</update.type>", "<update.type>9</update.type>", 1)

	txns, err := Envelope(strings.NewReader(xml))
	require.NoError(t, err)
	obj := txns[0].Messages[0].Object
	require.Len(t, obj.Issues(), 1)
	assert.Contains(t, obj.Issues()[0].Description, "invalid update type")
}

func TestQuotaEventsResolveByKind(t *testing.T) {
	xml := test.Envelope("1", []test.Record{
		// The subrecord code belongs to the balance event; the tag wins.
		test.Create("quota.exhaustion.event", "375", "00", map[string]string{
			"quota.definition.sid": "5",
			"occurrence.timestamp": "2021-03-04T10:11:12",
			"exhaustion.date":      "2021-03-04",
		}),
		test.Create("quota.mystery.event", "375", "95", map[string]string{
			"quota.definition.sid": "5",
		}),
	})

	txns, err := Envelope(strings.NewReader(xml))
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Len(t, txns[0].Messages, 2)

	exhaustion := txns[0].Messages[0].Object
	assert.Equal(t, "QuotaEvent", exhaustion.Def.Model)
	assert.Equal(t, "exhaustion", exhaustion.Text("kind"))
	assert.False(t, exhaustion.Def.Stub)

	assert.True(t, txns[0].Messages[1].Object.Def.Stub)
}
