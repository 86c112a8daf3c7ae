// Package storage is the versioned record store the importer writes to.
// Every change is a new tracked record in a version group; readers see the
// latest version from published workbaskets plus their own workbasket.
package storage

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tigerroll/tamato/pkg/taric/domain"
)

// Workbasket statuses.
const (
	WorkbasketEditing   = "EDITING"
	WorkbasketQueued    = "QUEUED"
	WorkbasketPublished = "PUBLISHED"
	WorkbasketArchived  = "ARCHIVED"
)

// Workbasket groups the transactions of one set of pending changes.
type Workbasket struct {
	ID        string `gorm:"primaryKey"`
	Title     string
	Author    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Workbasket) TableName() string { return "workbaskets" }

// Transaction is the storage side of one envelope transaction. Sequence is
// monotonic within the workbasket.
type Transaction struct {
	ID                  int64 `gorm:"primaryKey;autoIncrement"`
	WorkbasketID        string
	Sequence            int64
	SourceTransactionID string
	CreatedAt           time.Time
}

func (Transaction) TableName() string { return "transactions" }

// VersionGroup ties together every version of one business identity.
type VersionGroup struct {
	ID               int64 `gorm:"primaryKey;autoIncrement"`
	Model            string
	IdentityKey      string
	CurrentVersionID *int64
}

func (VersionGroup) TableName() string { return "version_groups" }

// TrackedRecord is one version.
type TrackedRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	VersionGroupID int64
	Model          string
	IdentityKey    string
	TransactionID  int64
	UpdateType     int
	Attributes     datatypes.JSONMap
	CreatedAt      time.Time
}

func (TrackedRecord) TableName() string { return "tracked_records" }

// Record is the read model handed to callers.
type Record struct {
	ID             int64
	VersionGroupID int64
	Model          string
	IdentityKey    string
	TransactionID  int64
	UpdateType     domain.UpdateType
	Attributes     map[string]string
}

func toRecord(r TrackedRecord) Record {
	attrs := make(map[string]string, len(r.Attributes))
	for k, v := range r.Attributes {
		if s, ok := v.(string); ok {
			attrs[k] = s
		}
	}
	return Record{
		ID:             r.ID,
		VersionGroupID: r.VersionGroupID,
		Model:          r.Model,
		IdentityKey:    r.IdentityKey,
		TransactionID:  r.TransactionID,
		UpdateType:     domain.UpdateType(r.UpdateType),
		Attributes:     attrs,
	}
}

func toJSONMap(attrs map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
