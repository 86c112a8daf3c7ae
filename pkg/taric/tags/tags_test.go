package tags

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<env:envelope xmlns="urn:publicid:-:DGTAXUD:TARIC:MESSAGE:1.0" xmlns:env="urn:publicid:-:DGTAXUD:GENERAL:ENVELOPE:1.0" id="7">
  <env:transaction id="1">
    <env:app.message id="1">
      <transmission>
        <record>
          <record.code>375</record.code>
          <subrecord.code>00</subrecord.code>
          <update.type>3</update.type>
          <quota.balance.event><quota.definition.sid>12</quota.definition.sid><note>a &amp; b</note></quota.balance.event>
        </record>
      </transmission>
    </env:app.message>
  </env:transaction>
  <env:transaction id="2"/>
</env:envelope>`

func decode(t *testing.T, doc string) *Element {
	t.Helper()
	var root Element
	require.NoError(t, xml.NewDecoder(strings.NewReader(doc)).Decode(&root))
	return &root
}

func TestTagMatching(t *testing.T) {
	events := MsgPattern(`quota\.[a-z.]+\.event`)
	assert.True(t, events.Matches(xml.Name{Space: MessageNamespace, Local: "quota.balance.event"}))
	assert.False(t, events.Matches(xml.Name{Space: EnvelopeNamespace, Local: "quota.balance.event"}))
	assert.True(t, events.Equal(Msg("quota.unblocking.event")))
	assert.True(t, Msg("quota.unblocking.event").Equal(events))
	assert.False(t, Msg("quota.definition").Equal(events))
	assert.True(t, Schema.QuotaEvent.Equal(Msg("quota.closed.and.transferred.event")))
	assert.False(t, Schema.QuotaEvent.Equal(Msg("quota.definition")))
	assert.Equal(t, "env:transaction", Schema.Transaction.QualifiedName())
}

func TestStreamDecodesTransactionsInOrder(t *testing.T) {
	var ids []string
	var envelopeID string
	err := Stream(strings.NewReader(sample), Schema.Transaction, StreamHandler{
		Open: func(start xml.StartElement) error {
			if Schema.Envelope.Matches(start.Name) {
				for _, a := range start.Attr {
					if a.Name.Local == "id" {
						envelopeID = a.Value
					}
				}
			}
			return nil
		},
		Element: func(e *Element) error {
			ids = append(ids, e.Attr("id"))
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", envelopeID)
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestElementNavigationAndEncode(t *testing.T) {
	root := decode(t, sample)

	txn := root.First(Schema.Transaction)
	require.NotNil(t, txn)
	record := txn.Find(Schema.Record)
	require.NotNil(t, record)
	assert.Equal(t, "375", record.ChildText(Schema.RecordCode))
	assert.Len(t, root.Iter(Schema.Transaction), 2)

	out := EncodeString(txn)
	assert.True(t, strings.HasPrefix(out, `<env:transaction id="1"><env:app.message id="1"><oub:transmission><oub:record>`))
	assert.Contains(t, out, "<oub:note>a &amp; b</oub:note>")

	doc := XMLHeader + EnvelopeStart("7") + out + EnvelopeEnd()
	reparsed := decode(t, doc)
	assert.Equal(t, "12", reparsed.Find(Msg("quota.definition.sid")).Value())
}
