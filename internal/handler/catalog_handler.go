package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/handler/dto"
	"github.com/yourusername/univio-api/internal/service"
	"go.uber.org/zap"
)

// CourseCatalog is the catalog surface used by CatalogHandler.
type CourseCatalog interface {
	AddSampleCourses(ctx context.Context) (*service.SampleCoursesReport, error)
	AddMoreData(ctx context.Context) *service.MoreDataReport
	CoursesByInstitution(ctx context.Context, institutionFilter string) (*service.CourseCatalog, error)
	CoursesForInstitution(ctx context.Context, institutionID string) (*service.InstitutionSummary, []service.CatalogCourse, error)
}

type CatalogHandler struct {
	catalog CourseCatalog
	log     *zap.Logger
}

func NewCatalogHandler(catalog CourseCatalog, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log.Named("catalog_handler")}
}

// AddSampleCourses handles POST /api/add-sample-courses
func (h *CatalogHandler) AddSampleCourses(c *gin.Context) {
	report, err := h.catalog.AddSampleCourses(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "Failed to add sample courses")
		return
	}

	data := gin.H{
		"coursesAdded":   report.CoursesAdded,
		"totalAttempted": report.TotalAttempted,
		"courses":        report.Courses,
	}
	if len(report.Errors) > 0 {
		data["errors"] = report.Errors
	}
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"message":              fmt.Sprintf("Successfully added %d sample courses with institution tracking", report.CoursesAdded),
		"data":                 data,
		"institutionBreakdown": report.InstitutionBreakdown,
	})
}

// AddMoreData handles POST /api/add-more-data
func (h *CatalogHandler) AddMoreData(c *gin.Context) {
	report := h.catalog.AddMoreData(c.Request.Context())

	errs := gin.H{}
	if report.InstitutionsError != "" {
		errs["institutions"] = report.InstitutionsError
	}
	if report.MajorsError != "" {
		errs["majors"] = report.MajorsError
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Successfully added more sample data",
		"data": gin.H{
			"institutionsAdded": report.InstitutionsAdded,
			"majorsAdded":       report.MajorsAdded,
			"errors":            errs,
		},
	})
}

// ListCourses handles GET /api/courses-by-institution?institution=
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("institution"))

	catalog, err := h.catalog.CoursesByInstitution(c.Request.Context(), filter)
	if err != nil {
		handleError(c, h.log, err, "Failed to get courses")
		return
	}

	message := fmt.Sprintf("Found %d courses", catalog.Statistics.TotalCourses)
	if filter != "" {
		message += " at " + filter
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": catalog})
}

// InstitutionCourses handles POST /api/courses-by-institution
func (h *CatalogHandler) InstitutionCourses(c *gin.Context) {
	var req dto.InstitutionCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, "institutionId is required")
		return
	}

	institution, courses, err := h.catalog.CoursesForInstitution(c.Request.Context(), req.InstitutionID)
	if err != nil {
		handleError(c, h.log, err, "Failed to get courses")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Found %d courses", len(courses)),
		"data": gin.H{
			"institution": institution,
			"courses":     courses,
		},
	})
}

// ExportCourses handles GET /api/courses-by-institution/export?institution=&format=xlsx|csv
func (h *CatalogHandler) ExportCourses(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("institution"))
	format := c.DefaultQuery("format", "xlsx")

	catalog, err := h.catalog.CoursesByInstitution(c.Request.Context(), filter)
	if err != nil {
		handleError(c, h.log, err, "Failed to get courses")
		return
	}

	filename := fmt.Sprintf("courses_%s", time.Now().Format("2006-01-02"))
	switch format {
	case "csv":
		h.exportCSV(c, catalog.Courses, filename)
	default:
		h.exportXLSX(c, catalog.Courses, filename)
	}
}

var courseExportHeaders = []string{"Institution", "Code", "Name", "Units", "Subject", "Category", "Transferable", "Prerequisites", "Typical Quarters"}

func courseExportRow(course entity.Course) []string {
	transferable := "No"
	if course.Transferable {
		transferable = "Yes"
	}
	return []string{
		sanitizeForExcel(course.InstitutionName),
		sanitizeForExcel(course.CourseCode),
		sanitizeForExcel(course.CourseName),
		strconv.FormatFloat(course.Units, 'f', -1, 64),
		sanitizeForExcel(course.SubjectArea),
		sanitizeForExcel(course.Category),
		transferable,
		sanitizeForExcel(strings.Join(course.Prerequisites, ", ")),
		strings.Join(course.TypicalQuarters, ", "),
	}
}

func (h *CatalogHandler) exportCSV(c *gin.Context, courses []entity.Course, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM so Excel opens the file as UTF-8
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(courseExportHeaders)
	for _, course := range courses {
		writer.Write(courseExportRow(course))
	}
}

func (h *CatalogHandler) exportXLSX(c *gin.Context, courses []entity.Course, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Courses"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		h.log.Error("failed to create stream writer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal"})
		return
	}

	headers := make([]interface{}, len(courseExportHeaders))
	for i, v := range courseExportHeaders {
		headers[i] = v
	}
	if err := sw.SetRow("A1", headers); err != nil {
		h.log.Error("failed to write header row", zap.Error(err))
	}

	for i, course := range courses {
		rowNum := i + 2
		values := courseExportRow(course)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		// Units stay numeric in the sheet.
		row[3] = course.Units
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			h.log.Error("failed to write row", zap.Int("row", rowNum), zap.Error(err))
		}
	}

	if err := sw.Flush(); err != nil {
		h.log.Error("failed to flush stream writer", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("failed to write xlsx response", zap.Error(err))
	}
}

// sanitizeForExcel prefixes values that a spreadsheet would treat as a formula.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
