// Package links manages per-class redirect links and keeps at most one of
// them active for each class.
package links

import (
	"context"
	"errors"
	"strconv"

	"classlink-portal/internal/models"
	"classlink-portal/internal/pagination"
	"classlink-portal/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var ErrClassMismatch = models.NewValidationError("class_name", "does not match the link's class")

type LinkInput struct {
	Name      string `validate:"required,max=200"`
	URL       string `validate:"required,max=2048"`
	ClassName string `validate:"required,max=100"`
}

type LinkPage struct {
	Links []*models.LinkRecord
	Meta  pagination.Meta
}

type Manager struct {
	store    *models.Store
	validate *validator.Validate
}

func NewManager(store *models.Store) *Manager {
	return &Manager{store: store, validate: validator.New()}
}

// CreateLink stores a new, inactive link. The url is kept as given.
func (m *Manager) CreateLink(ctx context.Context, name, url, className string) (*models.LinkRecord, error) {
	in := LinkInput{
		Name:      util.NormalizeField(name),
		URL:       util.NormalizeField(url),
		ClassName: util.NormalizeField(className),
	}
	if err := m.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, models.NewValidationError(fieldName(fieldErrs[0].Field()), "is required")
		}
		return nil, models.NewValidationError("", err.Error())
	}

	link := &models.LinkRecord{
		Name:      in.Name,
		URL:       in.URL,
		ClassName: in.ClassName,
	}
	if err := m.store.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"link_id":    link.ID,
		"class_name": link.ClassName,
	}).Info("Link created")
	return link, nil
}

func fieldName(structField string) string {
	switch structField {
	case "URL":
		return "link"
	case "ClassName":
		return "class_name"
	}
	return "name"
}

// ParseLinkID accepts a positive decimal id.
func ParseLinkID(raw string) (uint, error) {
	id, err := strconv.ParseUint(util.NormalizeField(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("link_id", "must be a positive number")
	}
	return uint(id), nil
}

// SetActiveLink makes the link the only active one of its class. The
// deactivation and activation commit together, so readers never see the
// class with two active links. A blank className means the link's own class;
// a className naming another class is rejected before anything changes.
func (m *Manager) SetActiveLink(ctx context.Context, rawID, className string) (*models.LinkRecord, error) {
	id, err := ParseLinkID(rawID)
	if err != nil {
		return nil, err
	}
	className = util.NormalizeField(className)

	var activated *models.LinkRecord
	err = m.store.Transaction(ctx, func(tx *models.Store) error {
		link, err := tx.GetLink(ctx, id)
		if err != nil {
			return err
		}
		if className == "" {
			className = link.ClassName
		}
		if className != link.ClassName {
			return ErrClassMismatch
		}

		deactivated, err := tx.DeactivateLinks(ctx, className)
		if err != nil {
			return err
		}
		if err := tx.ActivateLink(ctx, id); err != nil {
			return err
		}
		link.IsActive = true
		activated = link

		logrus.WithFields(logrus.Fields{
			"link_id":     id,
			"class_name":  className,
			"deactivated": deactivated,
		}).Info("Active link set")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

// ActiveLink returns the active link of the class, or models.ErrNoActiveLink.
func (m *Manager) ActiveLink(ctx context.Context, className string) (*models.LinkRecord, error) {
	return m.store.GetActiveLink(ctx, util.NormalizeField(className))
}

// ResetActiveLinks deactivates every link of the class, or of all classes
// when className is blank.
func (m *Manager) ResetActiveLinks(ctx context.Context, className string) (int64, error) {
	className = util.NormalizeField(className)
	n, err := m.store.ResetActiveLinks(ctx, className)
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"class_name": className, "deactivated": n}).Info("Active links reset")
	return n, nil
}

func (m *Manager) ListLinks(ctx context.Context, className string, p pagination.Params) (*LinkPage, error) {
	total, err := m.store.CountLinks(ctx, className)
	if err != nil {
		return nil, err
	}
	links, err := m.store.ListLinks(ctx, className, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return &LinkPage{Links: links, Meta: pagination.BuildMeta(total, p)}, nil
}

// ClassNames lists every class known to the roster or the links table.
func (m *Manager) ClassNames(ctx context.Context) ([]string, error) {
	return m.store.DistinctClassNames(ctx)
}
