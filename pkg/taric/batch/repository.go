package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm"
	"github.com/tigerroll/tamato/pkg/taric/domain"
	"github.com/tigerroll/tamato/pkg/taric/support/util/exception"
	"github.com/tigerroll/tamato/pkg/taric/support/util/logger"
)

var log = logger.For("batch")

// Batches stores import batches and their dependencies.
type Batches interface {
	CreateBatch(ctx context.Context, name, author string, splitJob bool, dependsOn ...string) (*ImportBatch, error)
	GetBatch(ctx context.Context, id string) (*ImportBatch, error)
	BatchesByStatus(ctx context.Context, status string) ([]ImportBatch, error)
	SetBatchWorkbasket(ctx context.Context, id, workbasketID string) error
	// FinishBatch moves an IMPORTING batch to status. A batch already
	// finished yields ErrBatchFinished.
	FinishBatch(ctx context.Context, id, status string) error
	Dependencies(ctx context.Context, id string) ([]ImportBatch, error)
	Dependents(ctx context.Context, id string) ([]ImportBatch, error)
}

// Chunks stores the chunks of a batch and their state machine.
type Chunks interface {
	CreateChunk(ctx context.Context, chunk *ImporterXMLChunk) error
	GetChunk(ctx context.Context, id string) (*ImporterXMLChunk, error)
	// Chunks lists a batch's chunks in chunk_number order, optionally only
	// those in statuses.
	Chunks(ctx context.Context, batchID string, statuses ...string) ([]ImporterXMLChunk, error)
	CountChunks(ctx context.Context, batchID string, statuses ...string) (int64, error)
	// ClaimChunk moves a WAITING chunk to RUNNING provided no other chunk of
	// the same scope is RUNNING. A lost race yields ErrChunkNotClaimed.
	ClaimChunk(ctx context.Context, chunk *ImporterXMLChunk) error
	FinishChunk(ctx context.Context, id, status string) error
	ResetChunk(ctx context.Context, id string) error
	ForceErrorChunk(ctx context.Context, id string) error
}

// IssueStore persists issues against a batch.
type IssueStore interface {
	AddIssues(ctx context.Context, batchID string, issues []domain.Issue) error
	// Issues returns a batch's issues, only those of severity when it is set.
	Issues(ctx context.Context, batchID string, severity domain.Severity) ([]domain.Issue, error)
}

// Repository implements Batches, Chunks and IssueStore with gorm.
type Repository struct {
	db *gorm.DB
}

// NewRepository returns a repository over db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return gormadapter.DB(ctx, r.db)
}

// CreateBatch implements Batches.
func (r *Repository) CreateBatch(ctx context.Context, name, author string, splitJob bool, dependsOn ...string) (*ImportBatch, error) {
	b := &ImportBatch{ID: uuid.NewString(), Name: name, Author: author, Status: StatusImporting, SplitJob: splitJob}
	err := r.conn(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(b).Error; err != nil {
			return fmt.Errorf("create batch %s: %w", name, err)
		}
		for _, dep := range dependsOn {
			if err := db.Create(&BatchDependency{DependentID: b.ID, DependsOnID: dep}).Error; err != nil {
				return fmt.Errorf("add dependency %s -> %s: %w", b.ID, dep, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Infof("created batch %s (%s), split=%t, %d dependencies", b.Name, b.ID, splitJob, len(dependsOn))
	return b, nil
}

// GetBatch implements Batches.
func (r *Repository) GetBatch(ctx context.Context, id string) (*ImportBatch, error) {
	var b ImportBatch
	if err := r.conn(ctx).Take(&b, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("load batch %s: %w", id, err)
	}
	return &b, nil
}

// BatchesByStatus implements Batches.
func (r *Repository) BatchesByStatus(ctx context.Context, status string) ([]ImportBatch, error) {
	var out []ImportBatch
	if err := r.conn(ctx).Where("status = ?", status).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s batches: %w", status, err)
	}
	return out, nil
}

// SetBatchWorkbasket implements Batches.
func (r *Repository) SetBatchWorkbasket(ctx context.Context, id, workbasketID string) error {
	res := r.conn(ctx).Model(&ImportBatch{}).Where("id = ?", id).Update("workbasket_id", workbasketID)
	if res.Error != nil {
		return fmt.Errorf("set workbasket of batch %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set workbasket of batch %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// FinishBatch implements Batches.
func (r *Repository) FinishBatch(ctx context.Context, id, status string) error {
	if status != StatusSucceeded && status != StatusFailed {
		return fmt.Errorf("finish batch %s: %q is not a terminal status", id, status)
	}
	res := r.conn(ctx).Model(&ImportBatch{}).
		Where("id = ? AND status = ?", id, StatusImporting).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("finish batch %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return exception.NewImportErrorf("batch", "batch %s cannot become %s", id, status, exception.ErrBatchFinished)
	}
	log.Infof("batch %s finished: %s", id, status)
	return nil
}

// Dependencies implements Batches.
func (r *Repository) Dependencies(ctx context.Context, id string) ([]ImportBatch, error) {
	var out []ImportBatch
	err := r.conn(ctx).
		Joins("JOIN import_batch_dependencies d ON d.depends_on_id = import_batches.id").
		Where("d.dependent_id = ?", id).
		Order("import_batches.created_at, import_batches.id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("dependencies of %s: %w", id, err)
	}
	return out, nil
}

// Dependents implements Batches.
func (r *Repository) Dependents(ctx context.Context, id string) ([]ImportBatch, error) {
	var out []ImportBatch
	err := r.conn(ctx).
		Joins("JOIN import_batch_dependencies d ON d.dependent_id = import_batches.id").
		Where("d.depends_on_id = ?", id).
		Order("import_batches.created_at, import_batches.id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("dependents of %s: %w", id, err)
	}
	return out, nil
}

// CreateChunk implements Chunks. Missing ID and Status are filled in.
func (r *Repository) CreateChunk(ctx context.Context, chunk *ImporterXMLChunk) error {
	if chunk.ID == "" {
		chunk.ID = uuid.NewString()
	}
	if chunk.Status == "" {
		chunk.Status = ChunkWaiting
	}
	if err := r.conn(ctx).Create(chunk).Error; err != nil {
		return fmt.Errorf("create chunk %d of batch %s: %w", chunk.ChunkNumber, chunk.BatchID, err)
	}
	return nil
}

// GetChunk implements Chunks.
func (r *Repository) GetChunk(ctx context.Context, id string) (*ImporterXMLChunk, error) {
	var c ImporterXMLChunk
	if err := r.conn(ctx).Take(&c, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("load chunk %s: %w", id, err)
	}
	return &c, nil
}

// Chunks implements Chunks.
func (r *Repository) Chunks(ctx context.Context, batchID string, statuses ...string) ([]ImporterXMLChunk, error) {
	q := r.conn(ctx).Where("batch_id = ?", batchID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var out []ImporterXMLChunk
	if err := q.Order("chunk_number, record_code, chapter").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list chunks of %s: %w", batchID, err)
	}
	return out, nil
}

// CountChunks implements Chunks.
func (r *Repository) CountChunks(ctx context.Context, batchID string, statuses ...string) (int64, error) {
	q := r.conn(ctx).Model(&ImporterXMLChunk{}).Where("batch_id = ?", batchID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count chunks of %s: %w", batchID, err)
	}
	return n, nil
}

// claimSQL flips one chunk to RUNNING. The RUNNING check reads through a
// derived table so MySQL accepts a subquery on the table being updated.
const claimSQL = `UPDATE importer_xml_chunks SET status = ?, updated_at = ?
WHERE id = ? AND status = ?
AND NOT EXISTS (
	SELECT 1 FROM (
		SELECT id FROM importer_xml_chunks
		WHERE batch_id = ? AND status = ?
		AND COALESCE(record_code, '') = ? AND COALESCE(chapter, '') = ?
	) running
)`

// ClaimChunk implements Chunks.
func (r *Repository) ClaimChunk(ctx context.Context, chunk *ImporterXMLChunk) error {
	res := r.conn(ctx).Exec(claimSQL,
		ChunkRunning, time.Now(),
		chunk.ID, ChunkWaiting,
		chunk.BatchID, ChunkRunning, deref(chunk.RecordCode), deref(chunk.Chapter),
	)
	if res.Error != nil {
		return fmt.Errorf("claim chunk %s: %w", chunk.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return exception.NewImportErrorf("batch", "chunk %s of batch %s", chunk.ID, chunk.BatchID, exception.ErrChunkNotClaimed)
	}
	chunk.Status = ChunkRunning
	log.Debugf("claimed chunk %d of batch %s", chunk.ChunkNumber, chunk.BatchID)
	return nil
}

// FinishChunk implements Chunks. Only a RUNNING chunk can finish.
func (r *Repository) FinishChunk(ctx context.Context, id, status string) error {
	if status != ChunkDone && status != ChunkErrored {
		return fmt.Errorf("finish chunk %s: %q is not a terminal status", id, status)
	}
	return r.transition(ctx, id, []string{ChunkRunning}, status)
}

// ResetChunk implements Chunks. It returns an ERRORED chunk to WAITING so an
// operator can rerun it.
func (r *Repository) ResetChunk(ctx context.Context, id string) error {
	return r.transition(ctx, id, []string{ChunkErrored}, ChunkWaiting)
}

// ForceErrorChunk implements Chunks. It marks a stuck WAITING or RUNNING
// chunk ERRORED.
func (r *Repository) ForceErrorChunk(ctx context.Context, id string) error {
	return r.transition(ctx, id, []string{ChunkWaiting, ChunkRunning}, ChunkErrored)
}

func (r *Repository) transition(ctx context.Context, id string, from []string, to string) error {
	res := r.conn(ctx).Model(&ImporterXMLChunk{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("move chunk %s to %s: %w", id, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("move chunk %s to %s: chunk is not in %v", id, to, from)
	}
	return nil
}

// AddIssues implements IssueStore.
func (r *Repository) AddIssues(ctx context.Context, batchID string, issues []domain.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	items := make([]IssueReportItem, len(issues))
	for n, i := range issues {
		items[n] = toItem(batchID, i)
	}
	if err := r.conn(ctx).CreateInBatches(items, 200).Error; err != nil {
		return fmt.Errorf("store %d issues for batch %s: %w", len(items), batchID, err)
	}
	return nil
}

// Issues implements IssueStore.
func (r *Repository) Issues(ctx context.Context, batchID string, severity domain.Severity) ([]domain.Issue, error) {
	q := r.conn(ctx).Where("batch_id = ?", batchID)
	if severity != "" {
		q = q.Where("severity = ?", string(severity))
	}
	var items []IssueReportItem
	if err := q.Order("created_at, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list issues of %s: %w", batchID, err)
	}
	out := make([]domain.Issue, len(items))
	for n, item := range items {
		out[n] = item.Issue()
	}
	return out, nil
}

func toItem(batchID string, i domain.Issue) IssueReportItem {
	keys := make(datatypes.JSONMap, len(i.IdentityKeys))
	for k, v := range i.IdentityKeys {
		keys[k] = v
	}
	item := IssueReportItem{
		ID:                 uuid.NewString(),
		BatchID:            batchID,
		ObjectType:         i.ObjectType,
		RelatedObjectType:  i.RelatedObjectType,
		ObjectIdentityKeys: keys,
		Description:        i.Description,
		Severity:           string(i.Severity),
		TransactionID:      i.TransactionID,
		ObjectDetails:      i.ObjectDetails,
	}
	if i.UpdateType != 0 {
		item.ChangeType = i.UpdateType.String()
	}
	return item
}

// Issue converts the stored row back into a domain issue.
func (item IssueReportItem) Issue() domain.Issue {
	keys := make(map[string]string, len(item.ObjectIdentityKeys))
	for k, v := range item.ObjectIdentityKeys {
		keys[k] = fmt.Sprint(v)
	}
	return domain.Issue{
		ObjectType:        item.ObjectType,
		RelatedObjectType: item.RelatedObjectType,
		IdentityKeys:      keys,
		Description:       item.Description,
		Severity:          domain.Severity(item.Severity),
		UpdateType:        domain.UpdateTypeByName(item.ChangeType),
		TransactionID:     item.TransactionID,
		ObjectDetails:     item.ObjectDetails,
	}
}

// IsNotClaimed reports whether err is a lost chunk claim.
func IsNotClaimed(err error) bool {
	return errors.Is(err, exception.ErrChunkNotClaimed)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	_ Batches    = (*Repository)(nil)
	_ Chunks     = (*Repository)(nil)
	_ IssueStore = (*Repository)(nil)
)
