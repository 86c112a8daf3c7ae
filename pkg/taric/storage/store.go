package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormadapter "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm"
	"github.com/tigerroll/tamato/pkg/taric/domain"
)

// ErrIntegrityViolation is returned when a write breaks a uniqueness rule.
var ErrIntegrityViolation = errors.New("integrity violation")

// View selects which versions a reader sees: everything in PUBLISHED
// workbaskets plus WorkbasketID's own transactions, optionally only up to
// and including UpToSequence.
type View struct {
	WorkbasketID string
	UpToSequence *int64
}

// Query filters records of one model. IdentityKey matches the identity
// column; Attrs match individual attributes of the latest version.
type Query struct {
	Model       string
	IdentityKey string
	Attrs       map[string]string
}

// Records is the versioned record store.
type Records interface {
	// LatestApproved returns the live latest version of every group matching q.
	LatestApproved(ctx context.Context, q Query, view View) ([]Record, error)
	// Create starts a version group, or revives a deleted one.
	Create(ctx context.Context, txn *Transaction, model, identityKey string, attrs map[string]string) (*Record, error)
	// NewVersion appends a version to current's group. attrs are merged over
	// current's attributes; deleted marks the version as a deletion.
	NewVersion(ctx context.Context, current *Record, txn *Transaction, attrs map[string]string, deleted bool) (*Record, error)
}

// Workbaskets manages workbaskets and their transactions.
type Workbaskets interface {
	CreateWorkbasket(ctx context.Context, title, author string) (*Workbasket, error)
	GetWorkbasket(ctx context.Context, id string) (*Workbasket, error)
	SetWorkbasketStatus(ctx context.Context, id, status string) error
	ClearWorkbasket(ctx context.Context, id string) error
	IsWorkbasketEmpty(ctx context.Context, id string) (bool, error)
	CreateTransaction(ctx context.Context, workbasketID, sourceTransactionID string) (*Transaction, error)
}

// Store implements Records and Workbaskets with gorm.
type Store struct {
	db *gorm.DB
}

// NewStore returns a store over db. Statements use the transaction carried
// by the context when there is one.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return gormadapter.DB(ctx, s.db)
}

// LatestApproved implements Records.
func (s *Store) LatestApproved(ctx context.Context, q Query, view View) ([]Record, error) {
	db := s.conn(ctx)

	latest := db.Table("tracked_records AS tr").
		Select("MAX(tr.id)").
		Joins("JOIN transactions t ON t.id = tr.transaction_id").
		Joins("JOIN workbaskets w ON w.id = t.workbasket_id").
		Where("tr.model = ?", q.Model)
	switch {
	case view.WorkbasketID == "":
		latest = latest.Where("w.status = ?", WorkbasketPublished)
	case view.UpToSequence != nil:
		latest = latest.Where("(w.status = ? OR (t.workbasket_id = ? AND t.sequence <= ?))", WorkbasketPublished, view.WorkbasketID, *view.UpToSequence)
	default:
		latest = latest.Where("(w.status = ? OR t.workbasket_id = ?)", WorkbasketPublished, view.WorkbasketID)
	}
	if q.IdentityKey != "" {
		latest = latest.Where("tr.identity_key = ?", q.IdentityKey)
	}
	latest = latest.Group("tr.version_group_id")

	query := db.Model(&TrackedRecord{}).
		Where("id IN (?)", latest).
		Where("update_type <> ?", int(domain.UpdateTypeDelete))
	keys := make([]string, 0, len(q.Attrs))
	for k := range q.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query = query.Where(datatypes.JSONQuery("attributes").Equals(q.Attrs[k], k))
	}

	var rows []TrackedRecord
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Model, err)
	}
	out := make([]Record, len(rows))
	for n, r := range rows {
		out[n] = toRecord(r)
	}
	return out, nil
}

// Create implements Records.
func (s *Store) Create(ctx context.Context, txn *Transaction, model, identityKey string, attrs map[string]string) (*Record, error) {
	db := s.conn(ctx)

	var group VersionGroup
	err := db.Where("model = ? AND identity_key = ?", model, identityKey).Take(&group).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		group = VersionGroup{Model: model, IdentityKey: identityKey}
		if err := db.Create(&group).Error; err != nil {
			if gormadapter.IsUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s %s already exists", ErrIntegrityViolation, model, identityKey)
			}
			return nil, fmt.Errorf("create version group: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load version group: %w", err)
	default:
		if group.CurrentVersionID != nil {
			var current TrackedRecord
			if err := db.Take(&current, *group.CurrentVersionID).Error; err != nil {
				return nil, fmt.Errorf("load current version: %w", err)
			}
			if current.UpdateType != int(domain.UpdateTypeDelete) {
				return nil, fmt.Errorf("%w: %s %s already exists", ErrIntegrityViolation, model, identityKey)
			}
		}
	}
	return s.appendVersion(db, group.ID, model, identityKey, txn, domain.UpdateTypeCreate, attrs)
}

// NewVersion implements Records.
func (s *Store) NewVersion(ctx context.Context, current *Record, txn *Transaction, attrs map[string]string, deleted bool) (*Record, error) {
	merged := make(map[string]string, len(current.Attributes)+len(attrs))
	for k, v := range current.Attributes {
		merged[k] = v
	}
	updateType := domain.UpdateTypeDelete
	if !deleted {
		updateType = domain.UpdateTypeUpdate
		for k, v := range attrs {
			merged[k] = v
		}
	}
	return s.appendVersion(s.conn(ctx), current.VersionGroupID, current.Model, current.IdentityKey, txn, updateType, merged)
}

func (s *Store) appendVersion(db *gorm.DB, groupID int64, model, identityKey string, txn *Transaction, updateType domain.UpdateType, attrs map[string]string) (*Record, error) {
	row := TrackedRecord{
		VersionGroupID: groupID,
		Model:          model,
		IdentityKey:    identityKey,
		TransactionID:  txn.ID,
		UpdateType:     int(updateType),
		Attributes:     toJSONMap(attrs),
	}
	if err := db.Create(&row).Error; err != nil {
		if gormadapter.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
		}
		return nil, fmt.Errorf("insert %s version: %w", model, err)
	}
	if err := db.Model(&VersionGroup{}).Where("id = ?", groupID).Update("current_version_id", row.ID).Error; err != nil {
		return nil, fmt.Errorf("advance version group: %w", err)
	}
	rec := toRecord(row)
	return &rec, nil
}

// CreateWorkbasket implements Workbaskets.
func (s *Store) CreateWorkbasket(ctx context.Context, title, author string) (*Workbasket, error) {
	wb := &Workbasket{ID: uuid.NewString(), Title: title, Author: author, Status: WorkbasketEditing}
	if err := s.conn(ctx).Create(wb).Error; err != nil {
		return nil, fmt.Errorf("create workbasket: %w", err)
	}
	return wb, nil
}

// GetWorkbasket implements Workbaskets.
func (s *Store) GetWorkbasket(ctx context.Context, id string) (*Workbasket, error) {
	var wb Workbasket
	if err := s.conn(ctx).Take(&wb, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("load workbasket %s: %w", id, err)
	}
	return &wb, nil
}

// SetWorkbasketStatus implements Workbaskets.
func (s *Store) SetWorkbasketStatus(ctx context.Context, id, status string) error {
	res := s.conn(ctx).Model(&Workbasket{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update workbasket %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update workbasket %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// ClearWorkbasket removes every version written by the workbasket's
// transactions, and the transactions themselves.
func (s *Store) ClearWorkbasket(ctx context.Context, id string) error {
	return s.conn(ctx).Transaction(func(db *gorm.DB) error {
		txnIDs := func() *gorm.DB {
			return db.Model(&Transaction{}).Select("id").Where("workbasket_id = ?", id)
		}

		var groupIDs []int64
		if err := db.Model(&TrackedRecord{}).Distinct("version_group_id").Where("transaction_id IN (?)", txnIDs()).Pluck("version_group_id", &groupIDs).Error; err != nil {
			return fmt.Errorf("list version groups: %w", err)
		}
		if err := db.Where("transaction_id IN (?)", txnIDs()).Delete(&TrackedRecord{}).Error; err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		for _, gid := range groupIDs {
			var latest sql.NullInt64
			if err := db.Model(&TrackedRecord{}).Select("MAX(id)").Where("version_group_id = ?", gid).Row().Scan(&latest); err != nil {
				return fmt.Errorf("recompute version group %d: %w", gid, err)
			}
			if !latest.Valid {
				if err := db.Delete(&VersionGroup{}, gid).Error; err != nil {
					return fmt.Errorf("delete version group %d: %w", gid, err)
				}
				continue
			}
			if err := db.Model(&VersionGroup{}).Where("id = ?", gid).Update("current_version_id", latest.Int64).Error; err != nil {
				return fmt.Errorf("rewind version group %d: %w", gid, err)
			}
		}
		if err := db.Where("workbasket_id = ?", id).Delete(&Transaction{}).Error; err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		return nil
	})
}

// IsWorkbasketEmpty reports whether no version was written in the workbasket.
func (s *Store) IsWorkbasketEmpty(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&TrackedRecord{}).
		Joins("JOIN transactions ON transactions.id = tracked_records.transaction_id").
		Where("transactions.workbasket_id = ?", id).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count workbasket %s: %w", id, err)
	}
	return n == 0, nil
}

// CreateTransaction implements Workbaskets.
func (s *Store) CreateTransaction(ctx context.Context, workbasketID, sourceTransactionID string) (*Transaction, error) {
	db := s.conn(ctx)
	if err := s.lockWorkbasket(db, workbasketID); err != nil {
		return nil, err
	}
	var last sql.NullInt64
	if err := db.Model(&Transaction{}).Select("MAX(sequence)").Where("workbasket_id = ?", workbasketID).Row().Scan(&last); err != nil {
		return nil, fmt.Errorf("next transaction sequence: %w", err)
	}
	next := last.Int64 + 1
	txn := &Transaction{WorkbasketID: workbasketID, Sequence: next, SourceTransactionID: sourceTransactionID}
	if err := db.Create(txn).Error; err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

// lockWorkbasket holds the workbasket row until the surrounding transaction
// ends, so concurrent commits into one workbasket take sequences in turn.
// SQLite has no row locks; its writers are already serialised.
func (s *Store) lockWorkbasket(db *gorm.DB, workbasketID string) error {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	var wb Workbasket
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", workbasketID).Take(&wb).Error
	if err != nil {
		return fmt.Errorf("lock workbasket %s: %w", workbasketID, err)
	}
	return nil
}

var (
	_ Records     = (*Store)(nil)
	_ Workbaskets = (*Store)(nil)
)
