package service

import (
	"context"
	"fmt"

	"github.com/yourusername/univio-api/internal/domain/entity"
	"github.com/yourusername/univio-api/internal/domain/repository"
	apperrors "github.com/yourusername/univio-api/internal/pkg/errors"
	"go.uber.org/zap"
)

// Short names of the institutions the sample courses are attached to.
var sampleInstitutions = []string{"De Anza", "Foothill", "UCLA", "UC Berkeley"}

var allQuarters = []string{"fall", "winter", "spring"}

// sampleCourse describes a seed course; institution is the short name.
type sampleCourse struct {
	institution string
	course      entity.Course
}

func sampleCourses() []sampleCourse {
	return []sampleCourse{
		{"De Anza", entity.Course{CourseCode: "MATH 1A", CourseName: "Calculus I", Description: "Differential calculus of functions of one variable", Units: 5.0, Category: "Mathematics", SubjectArea: "MATH", Transferable: true, TypicalQuarters: allQuarters}},
		{"De Anza", entity.Course{CourseCode: "CS 1A", CourseName: "Object-Oriented Programming Methodologies in Java", Description: "Introduction to programming using Java", Units: 4.5, Category: "Computer Science", SubjectArea: "CS", Transferable: true, TypicalQuarters: allQuarters}},
		{"De Anza", entity.Course{CourseCode: "ENGL 1A", CourseName: "Composition and Reading", Description: "Critical thinking and writing", Units: 4.0, Category: "English", SubjectArea: "ENGL", Transferable: true, TypicalQuarters: allQuarters}},
		{"Foothill", entity.Course{CourseCode: "MATH 1B", CourseName: "Calculus II", Description: "Integral calculus and infinite series", Units: 5.0, Category: "Mathematics", SubjectArea: "MATH", Prerequisites: []string{"MATH 1A"}, Transferable: true, TypicalQuarters: allQuarters}},
		{"Foothill", entity.Course{CourseCode: "CS 2A", CourseName: "Object-Oriented Programming Methodologies in C++", Description: "Advanced programming concepts using C++", Units: 4.5, Category: "Computer Science", SubjectArea: "CS", Prerequisites: []string{"CS 1A"}, Transferable: true, TypicalQuarters: allQuarters}},
		// Upper division, not transferable.
		{"UCLA", entity.Course{CourseCode: "CS 111", CourseName: "Operating Systems Principles", Description: "Introduction to operating systems design and evaluation", Units: 4.0, Category: "Computer Science", SubjectArea: "CS", Prerequisites: []string{"CS 33", "CS 35L"}, Transferable: false, TypicalQuarters: allQuarters}},
		{"UC Berkeley", entity.Course{CourseCode: "CS 61A", CourseName: "Structure and Interpretation of Computer Programs", Description: "Introduction to programming and computer science", Units: 4.0, Category: "Computer Science", SubjectArea: "CS", Transferable: false, TypicalQuarters: []string{"fall", "spring"}}},
	}
}

func extraInstitutions() []entity.Institution {
	return []entity.Institution{
		{Name: "California State University, San Francisco", ShortName: "SF State", Type: "university", SystemName: "CSU System", State: "CA", AssistOrgName: "San Francisco State University"},
		{Name: "Ohlone College", ShortName: "Ohlone", Type: "community_college", SystemName: "California Community Colleges", State: "CA", AssistOrgName: "Ohlone College"},
		{Name: "Mission College", ShortName: "Mission", Type: "community_college", SystemName: "California Community Colleges", State: "CA", AssistOrgName: "Mission College"},
	}
}

func extraMajors() []entity.Major {
	return []entity.Major{
		{Name: "Mechanical Engineering", Category: "STEM", TypicalUnits: 128},
		{Name: "Electrical Engineering", Category: "STEM", TypicalUnits: 128},
		{Name: "Civil Engineering", Category: "STEM", TypicalUnits: 128},
		{Name: "Marketing", Category: "Business", TypicalUnits: 120},
		{Name: "Finance", Category: "Business", TypicalUnits: 120},
		{Name: "Sociology", Category: "Social Sciences", TypicalUnits: 120},
	}
}

// AddedCourse summarizes one inserted sample course.
type AddedCourse struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Institution string  `json:"institution"`
	Units       float64 `json:"units"`
}

// SampleCoursesReport is the result of AddSampleCourses.
type SampleCoursesReport struct {
	CoursesAdded         int            `json:"coursesAdded"`
	TotalAttempted       int            `json:"totalAttempted"`
	Courses              []AddedCourse  `json:"courses"`
	Errors               []string       `json:"errors,omitempty"`
	InstitutionBreakdown map[string]int `json:"-"`
}

// MoreDataReport is the result of AddMoreData.
type MoreDataReport struct {
	InstitutionsAdded int    `json:"institutionsAdded"`
	MajorsAdded       int    `json:"majorsAdded"`
	InstitutionsError string `json:"-"`
	MajorsError       string `json:"-"`
}

// CatalogCourse is the compact course view used in catalog listings.
type CatalogCourse struct {
	ID              string   `json:"id"`
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	Units           float64  `json:"units"`
	Category        string   `json:"category"`
	Subject         string   `json:"subject"`
	Transferable    bool     `json:"transferable"`
	Description     string   `json:"description,omitempty"`
	Prerequisites   []string `json:"prerequisites,omitempty"`
	TypicalQuarters []string `json:"typical_quarters,omitempty"`
}

// InstitutionSummary is the institution header of a course group.
type InstitutionSummary struct {
	Name       string `json:"name"`
	ShortName  string `json:"short_name"`
	Type       string `json:"type"`
	SystemName string `json:"system_name"`
}

// InstitutionCourses groups courses of one institution.
type InstitutionCourses struct {
	Institution InstitutionSummary `json:"institution"`
	Courses     []CatalogCourse    `json:"courses"`
}

// CatalogStatistics summarizes a course listing.
type CatalogStatistics struct {
	TotalCourses        int            `json:"totalCourses"`
	TotalInstitutions   int            `json:"totalInstitutions"`
	TransferableCourses int            `json:"transferableCourses"`
	CoursesByType       map[string]int `json:"coursesByType"`
	CoursesBySubject    map[string]int `json:"coursesBySubject"`
}

// CourseCatalog is the grouped result of CoursesByInstitution.
type CourseCatalog struct {
	CoursesByInstitution map[string]*InstitutionCourses `json:"coursesByInstitution"`
	Statistics           CatalogStatistics              `json:"statistics"`
	Filter               string                         `json:"filter"`
	// Courses keeps the flat, ordered listing for exports.
	Courses []entity.Course `json:"-"`
}

type CatalogService struct {
	catalog repository.CatalogRepository
	log     *zap.Logger
}

func NewCatalogService(catalog repository.CatalogRepository, log *zap.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, log: log.Named("catalog")}
}

// AddSampleCourses inserts the seed courses. Courses that fail (for example duplicates) are
// reported in Errors and do not stop the others.
func (s *CatalogService) AddSampleCourses(ctx context.Context) (*SampleCoursesReport, error) {
	institutions, err := s.catalog.ListInstitutions(ctx, 0)
	if err != nil {
		return nil, err
	}
	if len(institutions) == 0 {
		return nil, fmt.Errorf("%w: no institutions found, load institutions first", apperrors.ErrValidation)
	}

	byShortName := make(map[string]entity.Institution, len(institutions))
	for _, inst := range institutions {
		byShortName[inst.ShortName] = inst
	}
	for _, name := range sampleInstitutions {
		if _, ok := byShortName[name]; !ok {
			return nil, fmt.Errorf("%w: required institutions not found", apperrors.ErrValidation)
		}
	}

	seeds := sampleCourses()
	report := &SampleCoursesReport{
		TotalAttempted:       len(seeds),
		Courses:              []AddedCourse{},
		InstitutionBreakdown: make(map[string]int, len(sampleInstitutions)),
	}
	for _, name := range sampleInstitutions {
		report.InstitutionBreakdown[byShortName[name].Name] = 0
	}

	for _, seed := range seeds {
		inst := byShortName[seed.institution]
		course := seed.course
		course.InstitutionID = inst.ID
		course.InstitutionName = inst.Name

		if err := s.catalog.CreateCourse(ctx, &course); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", course.CourseCode, err))
			continue
		}
		report.Courses = append(report.Courses, AddedCourse{
			Code:        course.CourseCode,
			Name:        course.CourseName,
			Institution: course.InstitutionName,
			Units:       course.Units,
		})
		report.InstitutionBreakdown[inst.Name]++
	}
	report.CoursesAdded = len(report.Courses)

	s.log.Info("sample courses added", zap.Int("added", report.CoursesAdded), zap.Int("errors", len(report.Errors)))
	return report, nil
}

// AddMoreData inserts extra institutions and majors. Failures are reported per table.
func (s *CatalogService) AddMoreData(ctx context.Context) *MoreDataReport {
	report := &MoreDataReport{}

	institutions := extraInstitutions()
	if err := s.catalog.CreateInstitutions(ctx, institutions); err != nil {
		s.log.Error("failed to add institutions", zap.Error(err))
		report.InstitutionsError = err.Error()
	} else {
		report.InstitutionsAdded = len(institutions)
	}

	majors := extraMajors()
	if err := s.catalog.CreateMajors(ctx, majors); err != nil {
		s.log.Error("failed to add majors", zap.Error(err))
		report.MajorsError = err.Error()
	} else {
		report.MajorsAdded = len(majors)
	}
	return report
}

// CoursesByInstitution lists courses grouped by institution name, optionally filtered.
func (s *CatalogService) CoursesByInstitution(ctx context.Context, institutionFilter string) (*CourseCatalog, error) {
	courses, err := s.catalog.ListCourses(ctx, repository.CourseFilter{InstitutionName: institutionFilter})
	if err != nil {
		return nil, err
	}

	catalog := &CourseCatalog{
		CoursesByInstitution: map[string]*InstitutionCourses{},
		Statistics: CatalogStatistics{
			CoursesByType:    map[string]int{},
			CoursesBySubject: map[string]int{},
		},
		Filter:  "all",
		Courses: courses,
	}
	if institutionFilter != "" {
		catalog.Filter = institutionFilter
	}

	for _, c := range courses {
		name := c.InstitutionName
		if name == "" {
			name = "Unknown"
		}
		group, ok := catalog.CoursesByInstitution[name]
		if !ok {
			group = &InstitutionCourses{Institution: InstitutionSummary{Name: name}, Courses: []CatalogCourse{}}
			if c.Institution != nil {
				group.Institution = InstitutionSummary{
					Name:       c.Institution.Name,
					ShortName:  c.Institution.ShortName,
					Type:       c.Institution.Type,
					SystemName: c.Institution.SystemName,
				}
			}
			catalog.CoursesByInstitution[name] = group
		}
		group.Courses = append(group.Courses, CatalogCourse{
			ID:           c.ID,
			Code:         c.CourseCode,
			Name:         c.CourseName,
			Units:        c.Units,
			Category:     c.Category,
			Subject:      c.SubjectArea,
			Transferable: c.Transferable,
		})

		if c.Transferable {
			catalog.Statistics.TransferableCourses++
		}
		instType := "unknown"
		if c.Institution != nil && c.Institution.Type != "" {
			instType = c.Institution.Type
		}
		catalog.Statistics.CoursesByType[instType]++
		subject := c.SubjectArea
		if subject == "" {
			subject = "unknown"
		}
		catalog.Statistics.CoursesBySubject[subject]++
	}
	catalog.Statistics.TotalCourses = len(courses)
	catalog.Statistics.TotalInstitutions = len(catalog.CoursesByInstitution)
	return catalog, nil
}

// CoursesForInstitution lists the full course records of one institution.
func (s *CatalogService) CoursesForInstitution(ctx context.Context, institutionID string) (*InstitutionSummary, []CatalogCourse, error) {
	if institutionID == "" {
		return nil, nil, fmt.Errorf("%w: institutionId is required", apperrors.ErrValidation)
	}
	courses, err := s.catalog.ListCourses(ctx, repository.CourseFilter{InstitutionID: institutionID})
	if err != nil {
		return nil, nil, err
	}

	var summary *InstitutionSummary
	out := make([]CatalogCourse, 0, len(courses))
	for _, c := range courses {
		if summary == nil && c.Institution != nil {
			summary = &InstitutionSummary{
				Name:       c.Institution.Name,
				ShortName:  c.Institution.ShortName,
				Type:       c.Institution.Type,
				SystemName: c.Institution.SystemName,
			}
		}
		out = append(out, CatalogCourse{
			ID:              c.ID,
			Code:            c.CourseCode,
			Name:            c.CourseName,
			Units:           c.Units,
			Category:        c.Category,
			Subject:         c.SubjectArea,
			Transferable:    c.Transferable,
			Description:     c.Description,
			Prerequisites:   c.Prerequisites,
			TypicalQuarters: c.TypicalQuarters,
		})
	}
	return summary, out, nil
}
