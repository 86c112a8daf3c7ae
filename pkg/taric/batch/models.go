// Package batch persists import batches, the XML chunks they are split
// into and the issues raised while importing them.
package batch

import (
	"time"

	"gorm.io/datatypes"
)

// Batch statuses. SUCCEEDED and FAILED are terminal.
const (
	StatusImporting = "IMPORTING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Chunk statuses.
const (
	ChunkWaiting = "WAITING"
	ChunkRunning = "RUNNING"
	ChunkDone    = "DONE"
	ChunkErrored = "ERRORED"
)

// ImportBatch is one uploaded envelope and the workbasket it imports into.
type ImportBatch struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Author       string
	Status       string
	SplitJob     bool
	WorkbasketID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ImportBatch) TableName() string { return "import_batches" }

// Finished reports whether the batch reached a terminal status.
func (b *ImportBatch) Finished() bool {
	return b.Status == StatusSucceeded || b.Status == StatusFailed
}

// BatchDependency records that DependentID must wait for DependsOnID.
type BatchDependency struct {
	DependentID string `gorm:"primaryKey"`
	DependsOnID string `gorm:"primaryKey"`
}

func (BatchDependency) TableName() string { return "import_batch_dependencies" }

// ImporterXMLChunk is a self-contained envelope holding part of a batch.
// RecordCode and Chapter are only set for split jobs.
type ImporterXMLChunk struct {
	ID          string `gorm:"primaryKey"`
	BatchID     string
	RecordCode  *string
	Chapter     *string
	ChunkNumber int
	ChunkText   string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ImporterXMLChunk) TableName() string { return "importer_xml_chunks" }

// IssueReportItem is a persisted issue.
type IssueReportItem struct {
	ID                 string `gorm:"primaryKey"`
	BatchID            string
	ObjectType         string
	RelatedObjectType  string
	ObjectIdentityKeys datatypes.JSONMap
	Description        string
	Severity           string
	TransactionID      string
	ChangeType         string
	ObjectDetails      string
	CreatedAt          time.Time
}

func (IssueReportItem) TableName() string { return "import_issue_report_items" }
