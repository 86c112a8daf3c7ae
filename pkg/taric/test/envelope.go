package test

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tigerroll/tamato/pkg/taric/domain"
)

// Record describes one business record for an envelope fixture. Field keys
// are element local names, e.g. "quota.definition.sid".
type Record struct {
	Tag           string
	RecordCode    string
	SubrecordCode string
	UpdateType    domain.UpdateType
	Fields        map[string]string
}

// Create, Update and Delete build a Record with the given update type.
func Create(tag, recordCode, subrecordCode string, fields map[string]string) Record {
	return Record{Tag: tag, RecordCode: recordCode, SubrecordCode: subrecordCode, UpdateType: domain.UpdateTypeCreate, Fields: fields}
}

func Update(tag, recordCode, subrecordCode string, fields map[string]string) Record {
	return Record{Tag: tag, RecordCode: recordCode, SubrecordCode: subrecordCode, UpdateType: domain.UpdateTypeUpdate, Fields: fields}
}

func Delete(tag, recordCode, subrecordCode string, fields map[string]string) Record {
	return Record{Tag: tag, RecordCode: recordCode, SubrecordCode: subrecordCode, UpdateType: domain.UpdateTypeDelete, Fields: fields}
}

// Envelope renders a TARIC3 envelope with one transaction per argument.
// Transactions are numbered from 1 in argument order.
func Envelope(id string, transactions ...[]Record) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<env:envelope xmlns="urn:publicid:-:DGTAXUD:TARIC:MESSAGE:1.0" xmlns:env="urn:publicid:-:DGTAXUD:GENERAL:ENVELOPE:1.0" id="%s">`, id)
	seq := 0
	for n, records := range transactions {
		txID := n + 1
		fmt.Fprintf(&b, `<env:transaction id="%d">`, txID)
		for _, r := range records {
			seq++
			fmt.Fprintf(&b, `<env:app.message id="%d"><transmission><record>`, seq)
			fmt.Fprintf(&b, "<transaction.id>%d</transaction.id>", txID)
			fmt.Fprintf(&b, "<record.code>%s</record.code>", r.RecordCode)
			fmt.Fprintf(&b, "<subrecord.code>%s</subrecord.code>", r.SubrecordCode)
			fmt.Fprintf(&b, "<record.sequence.number>%d</record.sequence.number>", seq)
			fmt.Fprintf(&b, "<update.type>%d</update.type>", int(r.UpdateType))
			fmt.Fprintf(&b, "<%s>", r.Tag)
			keys := make([]string, 0, len(r.Fields))
			for k := range r.Fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "<%s>%s</%s>", k, r.Fields[k], k)
			}
			fmt.Fprintf(&b, "</%s>", r.Tag)
			b.WriteString("</record></transmission></env:app.message>")
		}
		b.WriteString("</env:transaction>")
	}
	b.WriteString("</env:envelope>")
	return b.String()
}
