// Package parse turns envelope transactions into ordered parsed messages.
package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/parsers"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
	"github.com/tigerroll/tamato/pkg/taric/tags"
)

var log = logger.For("parse")

// ParsedMessage is one record of a transaction.
type ParsedMessage struct {
	TransactionID  string
	RecordCode     string
	SubrecordCode  string
	SequenceNumber int64
	UpdateType     domain.UpdateType
	Object         *parsers.TaricObject
}

// ParsedTransaction is one envelope transaction. Index is its position in
// the document, starting at 0.
type ParsedTransaction struct {
	ID       string
	Index    int
	Messages []*ParsedMessage
}

// Envelope parses every transaction in r in document order.
func Envelope(r io.Reader) ([]*ParsedTransaction, error) {
	var out []*ParsedTransaction
	err := tags.Stream(r, tags.Schema.Transaction, tags.StreamHandler{
		Element: func(e *tags.Element) error {
			out = append(out, Transaction(e, len(out)))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	log.Debugf("parsed %d transactions", len(out))
	return out, nil
}

// Transaction parses one transaction element.
func Transaction(e *tags.Element, index int) *ParsedTransaction {
	t := &ParsedTransaction{ID: e.Attr("id"), Index: index}
	for _, record := range e.FindAll(tags.Schema.Record) {
		if msg := Record(record, t.ID); msg != nil {
			t.Messages = append(t.Messages, msg)
		}
	}
	return t
}

// Record parses one record element. It returns nil only when the record has
// no business element at all.
func Record(record *tags.Element, transactionID string) *ParsedMessage {
	var body *tags.Element
	for _, c := range record.Children {
		if !tags.Structural(c.XMLName) {
			body = c
			break
		}
	}
	if body == nil {
		log.Warnf("transaction %s: record without business element", transactionID)
		return nil
	}

	h := parsers.Header{
		TransactionID: transactionID,
		RecordCode:    record.ChildText(tags.Schema.RecordCode),
		SubrecordCode: record.ChildText(tags.Schema.SubrecordCode),
		Tag:           body.XMLName.Local,
	}
	if id := record.ChildText(tags.Schema.TransactionID); id != "" && transactionID == "" {
		h.TransactionID = id
	}
	seq, seqErr := strconv.ParseInt(record.ChildText(tags.Schema.SequenceNumber), 10, 64)
	if seqErr == nil {
		h.SequenceNumber = seq
	}
	updateType, updateErr := domain.ParseUpdateType(record.ChildText(tags.Schema.UpdateType))
	h.UpdateType = updateType

	var obj *parsers.TaricObject
	if def := lookup(h); def != nil {
		obj = parsers.Populate(def, h, rawData(body))
	} else {
		log.Warnf("transaction %s: no parser for %s (%s%s)", h.TransactionID, h.Tag, h.RecordCode, h.SubrecordCode)
		obj = parsers.Unknown(h)
	}
	if updateErr != nil {
		obj.AddIssue(domain.Issue{Description: updateErr.Error(), Severity: domain.SeverityError})
	}

	return &ParsedMessage{
		TransactionID:  h.TransactionID,
		RecordCode:     h.RecordCode,
		SubrecordCode:  h.SubrecordCode,
		SequenceNumber: h.SequenceNumber,
		UpdateType:     h.UpdateType,
		Object:         obj,
	}
}

func lookup(h parsers.Header) *parsers.Definition {
	if def, ok := parsers.ByCode(h.RecordCode, h.SubrecordCode); ok && def.Tag == h.Tag {
		return def
	}
	if tags.Schema.QuotaEvent.Equal(tags.Msg(h.Tag)) {
		if def, ok := parsers.QuotaEventParser(h.Tag); ok {
			return def
		}
		return nil
	}
	if def, ok := parsers.ByTag(h.Tag); ok {
		return def
	}
	return nil
}

// rawData flattens the business element into raw keys, e.g.
// quota.definition.sid becomes quota_definition_sid.
func rawData(body *tags.Element) map[string]string {
	data := make(map[string]string, len(body.Children))
	for _, c := range body.Children {
		data[strings.ReplaceAll(c.XMLName.Local, ".", "_")] = c.Value()
	}
	return data
}
