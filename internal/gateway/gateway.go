// Package gateway resolves a student's admission number to the active form
// link of the student's class.
package gateway

import (
	"context"
	"errors"

	"classlink-portal/internal/models"
	"classlink-portal/internal/util"

	"github.com/sirupsen/logrus"
)

// Resolution is a successful lookup.
type Resolution struct {
	Student *models.Student
	Link    *models.LinkRecord
}

func (r *Resolution) URL() string {
	return r.Link.URL
}

type Gateway struct {
	store *models.Store
}

func New(store *models.Store) *Gateway {
	return &Gateway{store: store}
}

// Resolve looks up the student and then the active link of the student's
// class, both inside one read transaction. It returns
// models.ErrInvalidCredential for an unknown or blank admission number and
// models.ErrNoActiveLink when the class has no active link. With
// ErrNoActiveLink the returned Resolution still carries the student.
func (g *Gateway) Resolve(ctx context.Context, admissionNumber string) (*Resolution, error) {
	admissionNumber = util.NormalizeField(admissionNumber)
	entry := logrus.WithField("admission_number", admissionNumber)
	if admissionNumber == "" {
		return nil, models.ErrInvalidCredential
	}

	var res Resolution
	err := g.store.Transaction(ctx, func(tx *models.Store) error {
		student, err := tx.GetStudentByAdmission(ctx, admissionNumber)
		if errors.Is(err, models.ErrStudentNotFound) {
			return models.ErrInvalidCredential
		}
		if err != nil {
			return err
		}
		res.Student = student

		link, err := tx.GetActiveLink(ctx, student.ClassName)
		if err != nil {
			return err
		}
		res.Link = link
		return nil
	})
	switch {
	case err == nil:
		entry.WithField("class_name", res.Student.ClassName).Info("Student resolved to active link")
		return &res, nil
	case errors.Is(err, models.ErrInvalidCredential):
		entry.Info("Invalid admission number")
	case errors.Is(err, models.ErrNoActiveLink):
		entry.WithField("class_name", res.Student.ClassName).Info("No active link for class")
		return &Resolution{Student: res.Student}, err
	}
	return nil, err
}
