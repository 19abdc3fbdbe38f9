package gateway

import (
	"context"
	"strconv"
	"testing"

	"classlink-portal/internal/links"
	"classlink-portal/internal/models"
	"classlink-portal/internal/roster"
	"classlink-portal/internal/tester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	store := tester.OpenStore(t)
	ctx := context.Background()
	students := roster.NewManager(store)
	linkManager := links.NewManager(store)

	_, err := students.AddStudent(ctx, "Ada Obi", "A001", "JSS1")
	require.NoError(t, err)
	_, err = students.AddStudent(ctx, "Bola Ade", "B001", "JSS2")
	require.NoError(t, err)

	link, err := linkManager.CreateLink(ctx, "JSS1 form", "https://forms.example/jss1", "JSS1")
	require.NoError(t, err)
	_, err = linkManager.SetActiveLink(ctx, strconv.FormatUint(uint64(link.ID), 10), "JSS1")
	require.NoError(t, err)
	// an inactive link for JSS2 does not count
	_, err = linkManager.CreateLink(ctx, "JSS2 form", "https://forms.example/jss2", "JSS2")
	require.NoError(t, err)

	g := New(store)

	tests := []struct {
		name        string
		admission   string
		wantURL     string
		wantErr     error
		wantStudent string
	}{
		{name: "active link", admission: "A001", wantURL: "https://forms.example/jss1"},
		{name: "padded input", admission: "  A001 ", wantURL: "https://forms.example/jss1"},
		{name: "no active link", admission: "B001", wantErr: models.ErrNoActiveLink, wantStudent: "Bola Ade"},
		{name: "unknown student", admission: "Z999", wantErr: models.ErrInvalidCredential},
		{name: "blank", admission: "   ", wantErr: models.ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := g.Resolve(ctx, tt.admission)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantStudent == "" {
					assert.Nil(t, res)
					return
				}
				// the student read in the same transaction comes back with the error
				require.NotNil(t, res)
				assert.Equal(t, tt.wantStudent, res.Student.Name)
				assert.Nil(t, res.Link)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, res.URL())
			assert.Equal(t, "JSS1", res.Student.ClassName)
		})
	}
}
