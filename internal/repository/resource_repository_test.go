package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labops/labops-api/internal/models"
)

func TestResourceRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "laboratory_id", "category", "name", "code", "critical", "active", "created_at", "updated_at"}).
		AddRow("eq-1", "lab-1", "equipment", "Centrifuge A", "EQ-001", true, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + resourceColumns + " FROM resources WHERE 1=1 AND category = $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs("equipment").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM resources WHERE 1=1 AND category = $1")).
		WithArgs("equipment").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ResourceFilter{Category: "equipment"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.CategoryEquipment, list[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResourceRepository(db)

	mock.ExpectExec("INSERT INTO resources").
		WithArgs(sqlmock.AnyArg(), "lab-1", "personnel", "Dr. Reyes", "OP-014", false, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	resource := &models.Resource{
		LaboratoryID: "lab-1",
		Category:     models.CategoryPersonnel,
		Name:         "Dr. Reyes",
		Code:         "OP-014",
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), resource))

	mock.ExpectExec("UPDATE resources SET active = FALSE").
		WithArgs("eq-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Deactivate(context.Background(), "eq-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
