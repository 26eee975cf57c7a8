package handler

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/univio-api/internal/domain/entity"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

// MockCourseCatalog implements CourseCatalog
type MockCourseCatalog struct {
	mock.Mock
}

func (m *MockCourseCatalog) AddSampleCourses(ctx context.Context) (*service.SampleCoursesReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SampleCoursesReport), args.Error(1)
}

func (m *MockCourseCatalog) AddMoreData(ctx context.Context) *service.MoreDataReport {
	args := m.Called(ctx)
	return args.Get(0).(*service.MoreDataReport)
}

func (m *MockCourseCatalog) CoursesByInstitution(ctx context.Context, institutionFilter string) (*service.CourseCatalog, error) {
	args := m.Called(ctx, institutionFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CourseCatalog), args.Error(1)
}

func (m *MockCourseCatalog) CoursesForInstitution(ctx context.Context, institutionID string) (*service.InstitutionSummary, []service.CatalogCourse, error) {
	args := m.Called(ctx, institutionID)
	var summary *service.InstitutionSummary
	if v := args.Get(0); v != nil {
		summary = v.(*service.InstitutionSummary)
	}
	var courses []service.CatalogCourse
	if v := args.Get(1); v != nil {
		courses = v.([]service.CatalogCourse)
	}
	return summary, courses, args.Error(2)
}

func exportCatalog() *service.CourseCatalog {
	return &service.CourseCatalog{
		CoursesByInstitution: map[string]*service.InstitutionCourses{},
		Statistics:           service.CatalogStatistics{TotalCourses: 2},
		Filter:               "all",
		Courses: []entity.Course{
			{CourseCode: "MATH 1A", CourseName: "Calculus I", Units: 5, InstitutionName: "De Anza College", Transferable: true},
			{CourseCode: "CS 1A", CourseName: "=HYPERLINK(\"x\")", Units: 4.5, InstitutionName: "De Anza College", Prerequisites: entity.StringArray{"MATH 1A"}},
		},
	}
}

func TestAddSampleCourses_Handler(t *testing.T) {
	t.Run("report", func(t *testing.T) {
		catalog := new(MockCourseCatalog)
		handler := NewCatalogHandler(catalog, zap.NewNop())
		catalog.On("AddSampleCourses", mock.Anything).Return(&service.SampleCoursesReport{
			CoursesAdded:         1,
			TotalAttempted:       7,
			Courses:              []service.AddedCourse{{Code: "MATH 1A"}},
			InstitutionBreakdown: map[string]int{"De Anza College": 1},
		}, nil)

		c, w := newTestGinContext("POST", "/api/add-sample-courses", nil)
		handler.AddSampleCourses(c)

		require.Equal(t, http.StatusOK, w.Code)
		resp := parseJSONResponse(t, w)
		data := resp["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["coursesAdded"])
		assert.NotContains(t, data, "errors")
		assert.Equal(t, float64(1), resp["institutionBreakdown"].(map[string]interface{})["De Anza College"])
	})

	t.Run("missing institutions", func(t *testing.T) {
		catalog := new(MockCourseCatalog)
		handler := NewCatalogHandler(catalog, zap.NewNop())
		catalog.On("AddSampleCourses", mock.Anything).Return(nil, apperrors.ErrValidation)

		c, w := newTestGinContext("POST", "/api/add-sample-courses", nil)
		handler.AddSampleCourses(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAddMoreData_Handler(t *testing.T) {
	catalog := new(MockCourseCatalog)
	handler := NewCatalogHandler(catalog, zap.NewNop())
	catalog.On("AddMoreData", mock.Anything).Return(&service.MoreDataReport{InstitutionsAdded: 3, MajorsError: "duplicate"})

	c, w := newTestGinContext("POST", "/api/add-more-data", nil)
	handler.AddMoreData(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := parseJSONResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["institutionsAdded"])
	assert.Equal(t, "duplicate", data["errors"].(map[string]interface{})["majors"])
}

func TestListCourses_Handler(t *testing.T) {
	catalog := new(MockCourseCatalog)
	handler := NewCatalogHandler(catalog, zap.NewNop())
	catalog.On("CoursesByInstitution", mock.Anything, "Foothill").Return(exportCatalog(), nil)

	c, w := newTestGinContext("GET", "/api/courses-by-institution?institution=Foothill", nil)
	handler.ListCourses(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Found 2 courses at Foothill", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.NotContains(t, data, "Courses")
	assert.Contains(t, data, "statistics")
}

func TestInstitutionCourses_Handler(t *testing.T) {
	catalog := new(MockCourseCatalog)
	handler := NewCatalogHandler(catalog, zap.NewNop())
	catalog.On("CoursesForInstitution", mock.Anything, "i-1").Return(
		&service.InstitutionSummary{Name: "Foothill College"},
		[]service.CatalogCourse{{Code: "MATH 1B"}},
		nil,
	)

	c, w := newTestGinContext("POST", "/api/courses-by-institution", map[string]string{"institutionId": "i-1"})
	handler.InstitutionCourses(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Found 1 courses", parseJSONResponse(t, w)["message"])

	c, w = newTestGinContext("POST", "/api/courses-by-institution", map[string]string{})
	handler.InstitutionCourses(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCourses_XLSX(t *testing.T) {
	catalog := new(MockCourseCatalog)
	handler := NewCatalogHandler(catalog, zap.NewNop())
	catalog.On("CoursesByInstitution", mock.Anything, "").Return(exportCatalog(), nil)

	c, w := newTestGinContext("GET", "/api/courses-by-institution/export", nil)
	handler.ExportCourses(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Courses")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Institution", rows[0][0])
	assert.Equal(t, "MATH 1A", rows[1][1])
	assert.Equal(t, "'=HYPERLINK(\"x\")", rows[2][2])
}

func TestExportCourses_CSV(t *testing.T) {
	catalog := new(MockCourseCatalog)
	handler := NewCatalogHandler(catalog, zap.NewNop())
	catalog.On("CoursesByInstitution", mock.Anything, "").Return(exportCatalog(), nil)

	c, w := newTestGinContext("GET", "/api/courses-by-institution/export?format=csv", nil)
	handler.ExportCourses(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := strings.TrimPrefix(w.Body.String(), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Institution,Code,Name"))
	assert.Contains(t, lines[2], "MATH 1A")
}

func TestSanitizeForExcel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"Calculus", "Calculus"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@cmd", "'@cmd"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeForExcel(tt.in))
	}
}
