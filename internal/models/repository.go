package models

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Store is the repository over the students and links tables.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs f inside a single database transaction. The Store handed
// to f is bound to that transaction and must not escape it.
func (s *Store) Transaction(ctx context.Context, f func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&Store{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- Students ---

// InsertStudent appends a student row. A uniqueness violation on the
// admission number is reported as SkippedDuplicate with a nil error.
func (s *Store) InsertStudent(ctx context.Context, student *Student) (InsertResult, error) {
	err := s.db.WithContext(ctx).Create(student).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return SkippedDuplicate, nil
		}
		return Rejected, fmt.Errorf("failed to insert student: %w", err)
	}
	return Inserted, nil
}

func (s *Store) GetStudentByAdmission(ctx context.Context, admissionNumber string) (*Student, error) {
	student := &Student{}
	err := s.db.WithContext(ctx).
		Where("admission_number = ?", admissionNumber).
		First(student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *Store) DeleteStudentByAdmission(ctx context.Context, admissionNumber string) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("admission_number = ?", admissionNumber).
		Delete(&Student{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete student: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteAllStudents(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Student{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete students: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) studentQuery(ctx context.Context, className string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Student{})
	if className != "" {
		q = q.Where("class_name = ?", className)
	}
	return q
}

// CountStudents counts students of a class, or all students when className is empty.
func (s *Store) CountStudents(ctx context.Context, className string) (int64, error) {
	var total int64
	if err := s.studentQuery(ctx, className).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return total, nil
}

// ListStudents returns one window of students in insertion order.
func (s *Store) ListStudents(ctx context.Context, className string, limit, offset int) ([]*Student, error) {
	var students []*Student
	err := s.studentQuery(ctx, className).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// DistinctClassNames lists every non-empty class name known to either table.
func (s *Store) DistinctClassNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Raw(`
		SELECT class_name FROM students WHERE class_name <> ''
		UNION
		SELECT class_name FROM links WHERE class_name <> ''
		ORDER BY class_name
	`).Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list class names: %w", err)
	}
	return names, nil
}

// --- Links ---

func (s *Store) CreateLink(ctx context.Context, link *LinkRecord) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

func (s *Store) GetLink(ctx context.Context, id uint) (*LinkRecord, error) {
	link := &LinkRecord{}
	err := s.db.WithContext(ctx).First(link, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

// DeactivateLinks clears the active flag on every link of the class.
func (s *Store) DeactivateLinks(ctx context.Context, className string) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&LinkRecord{}).
		Where("class_name = ? AND is_active = ?", className, true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate links: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) ActivateLink(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&LinkRecord{}).
		Where("id = ?", id).
		Update("is_active", true)
	if res.Error != nil {
		return fmt.Errorf("failed to activate link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ResetActiveLinks deactivates the active links of one class, or of every
// class when className is empty.
func (s *Store) ResetActiveLinks(ctx context.Context, className string) (int64, error) {
	if className != "" {
		return s.DeactivateLinks(ctx, className)
	}
	res := s.db.WithContext(ctx).
		Model(&LinkRecord{}).
		Where("is_active = ?", true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reset links: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) GetActiveLink(ctx context.Context, className string) (*LinkRecord, error) {
	link := &LinkRecord{}
	err := s.db.WithContext(ctx).
		Where("class_name = ? AND is_active = ?", className, true).
		Order("id ASC").
		First(link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveLink
		}
		return nil, fmt.Errorf("failed to get active link: %w", err)
	}
	return link, nil
}

func (s *Store) linkQuery(ctx context.Context, className string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&LinkRecord{})
	if className != "" {
		q = q.Where("class_name = ?", className)
	}
	return q
}

func (s *Store) CountLinks(ctx context.Context, className string) (int64, error) {
	var total int64
	if err := s.linkQuery(ctx, className).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return total, nil
}

func (s *Store) ListLinks(ctx context.Context, className string, limit, offset int) ([]*LinkRecord, error) {
	var links []*LinkRecord
	err := s.linkQuery(ctx, className).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}
