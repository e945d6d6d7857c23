package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/bea-academy/academy-go-api/internal/models"
)

// AssignmentFilter narrows catalog listings.
type AssignmentFilter struct {
	ClassID   *uint
	ProgramID *uint
	CreatedBy *uint
}

// AssignmentRepository defines persistence operations for assignment
// definitions. Every call is bound to a kind; the kind resolves the backing
// table exactly once here instead of being interpolated per query.
type AssignmentRepository interface {
	List(ctx context.Context, kind models.AssignmentKind, filter AssignmentFilter) ([]models.Assignment, error)
	ListAllKinds(ctx context.Context, filter AssignmentFilter) ([]models.TaggedAssignment, error)
	GetByID(ctx context.Context, kind models.AssignmentKind, id uint) (models.Assignment, error)
	FindByClassAndTitle(ctx context.Context, kind models.AssignmentKind, classID uint, title string) (models.Assignment, error)
	Create(ctx context.Context, kind models.AssignmentKind, assignment *models.Assignment) error
	Update(ctx context.Context, kind models.AssignmentKind, assignment *models.Assignment) error
	DeleteWithTombstone(ctx context.Context, kind models.AssignmentKind, id, deletedBy uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) table(ctx context.Context, kind models.AssignmentKind) *gorm.DB {
	return r.db.WithContext(ctx).Table(kind.Table())
}

func applyAssignmentFilter(query *gorm.DB, filter AssignmentFilter) *gorm.DB {
	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.ProgramID != nil {
		query = query.Where("program_id = ?", *filter.ProgramID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}

func (r *assignmentRepository) List(ctx context.Context, kind models.AssignmentKind, filter AssignmentFilter) ([]models.Assignment, error) {
	var assignments []models.Assignment
	query := applyAssignmentFilter(r.table(ctx, kind), filter)
	if err := query.Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

// ListAllKinds produces the cross-kind union, each row tagged with its kind
// and the merged result ordered by creation time descending. The four
// tables are queried separately; mixing kinds in one statement is never
// done.
func (r *assignmentRepository) ListAllKinds(ctx context.Context, filter AssignmentFilter) ([]models.TaggedAssignment, error) {
	var union []models.TaggedAssignment
	for _, kind := range models.AllKinds() {
		assignments, err := r.List(ctx, kind, filter)
		if err != nil {
			return nil, err
		}
		for _, assignment := range assignments {
			union = append(union, models.TaggedAssignment{Kind: kind, Assignment: assignment})
		}
	}

	sort.SliceStable(union, func(i, j int) bool {
		return union[i].CreatedAt.After(union[j].CreatedAt)
	})

	return union, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, kind models.AssignmentKind, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.table(ctx, kind).Where("id = ?", id).Take(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) FindByClassAndTitle(ctx context.Context, kind models.AssignmentKind, classID uint, title string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.table(ctx, kind).
		Where("class_id = ?", classID).
		Where("title = ?", title).
		Order("id ASC").
		Take(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, kind models.AssignmentKind, assignment *models.Assignment) error {
	return r.table(ctx, kind).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, kind models.AssignmentKind, assignment *models.Assignment) error {
	return r.table(ctx, kind).Save(assignment).Error
}

// DeleteWithTombstone hard deletes the definition and records a tombstone
// in the same transaction. Submissions are left in place deliberately.
func (r *assignmentRepository) DeleteWithTombstone(ctx context.Context, kind models.AssignmentKind, id, deletedBy uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := tx.Table(kind.Table()).Where("id = ?", id).Take(&assignment).Error; err != nil {
			return err
		}

		result := tx.Table(kind.Table()).Where("id = ?", id).Delete(&models.Assignment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		tombstone := models.DeletedAssignment{
			Kind:         kind,
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			ClassID:      assignment.ClassID,
			DeletedBy:    deletedBy,
		}
		return tx.Create(&tombstone).Error
	})
}
