package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appacademic "github.com/schoolerp/backend/internal/application/academic"
	"github.com/schoolerp/backend/internal/domain/academic"
	"github.com/schoolerp/backend/internal/interfaces/http/dto"
)

// AcademicHandler serves the academic calendar and roster endpoints
type AcademicHandler struct {
	BaseHandler
	academicService *appacademic.AcademicService
}

// NewAcademicHandler creates a new AcademicHandler
func NewAcademicHandler(academicService *appacademic.AcademicService) *AcademicHandler {
	return &AcademicHandler{academicService: academicService}
}

// RegisterRoutes registers the academic routes on the API group
func (h *AcademicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	periods := rg.Group("/periods")
	{
		periods.POST("", h.CreatePeriod)
	}

	terms := rg.Group("/terms")
	{
		terms.POST("", h.CreateTerm)
		terms.GET("", h.ListTerms)
		terms.GET("/current", h.GetCurrentTerm)
		terms.GET("/:id", h.GetTerm)
		terms.POST("/:id/complete", h.CompleteTerm)
		terms.POST("/:id/current", h.MarkCurrentTerm)
		terms.GET("/:id/records", h.ListTermRecords)
	}

	students := rg.Group("/students")
	{
		students.POST("", h.CreateStudent)
		students.GET("", h.ListStudents)
		students.GET("/:id", h.GetStudent)
		students.PATCH("/:id/enrollment", h.UpdateEnrollment)
		students.GET("/:id/records", h.ListStudentRecords)
	}

	rg.POST("/academic-records", h.RecordEnrollment)
}

// CreatePeriodRequest is the request body for creating an academic period
type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// CreatePeriod handles POST /periods
func (h *AcademicHandler) CreatePeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start date format")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end date format")
		return
	}

	period, err := h.academicService.CreatePeriod(c.Request.Context(), appacademic.CreatePeriodRequest{
		TenantID:  tenantID,
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, period)
}

// CreateTermRequest is the request body for creating a term
type CreateTermRequest struct {
	AcademicPeriodID string `json:"academic_period_id" binding:"required,uuid"`
	Name             string `json:"name" binding:"required"`
	TermNumber       int    `json:"term_number" binding:"required,min=1"`
	StartDate        string `json:"start_date" binding:"required"`
	EndDate          string `json:"end_date" binding:"required"`
}

// CreateTerm handles POST /terms
func (h *AcademicHandler) CreateTerm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	periodID, err := uuid.Parse(req.AcademicPeriodID)
	if err != nil {
		h.BadRequest(c, "Invalid academic period ID format")
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start date format")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end date format")
		return
	}

	term, err := h.academicService.CreateTerm(c.Request.Context(), appacademic.CreateTermRequest{
		TenantID:         tenantID,
		AcademicPeriodID: periodID,
		Name:             req.Name,
		TermNumber:       req.TermNumber,
		StartDate:        startDate,
		EndDate:          endDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, term)
}

// ListTerms handles GET /terms
func (h *AcademicHandler) ListTerms(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := academic.TermFilter{Filter: listReq.ToFilter()}
	if v := c.Query("academic_period_id"); v != "" {
		periodID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid academic period ID format")
			return
		}
		filter.AcademicPeriodID = &periodID
	}
	if v := c.Query("is_completed"); v != "" {
		completed := v == "true"
		filter.IsCompleted = &completed
	}

	terms, err := h.academicService.ListTerms(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, terms)
}

// GetTerm handles GET /terms/:id
func (h *AcademicHandler) GetTerm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	termID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	term, err := h.academicService.GetTerm(c.Request.Context(), tenantID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, term)
}

// GetCurrentTerm handles GET /terms/current
func (h *AcademicHandler) GetCurrentTerm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	term, err := h.academicService.CurrentTerm(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, term)
}

// CompleteTerm handles POST /terms/:id/complete
func (h *AcademicHandler) CompleteTerm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	termID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	term, err := h.academicService.CompleteTerm(c.Request.Context(), tenantID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, term)
}

// MarkCurrentTerm handles POST /terms/:id/current
func (h *AcademicHandler) MarkCurrentTerm(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	termID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	term, err := h.academicService.MarkCurrentTerm(c.Request.Context(), tenantID, termID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, term)
}

// CreateStudentRequest is the request body for registering a student
type CreateStudentRequest struct {
	AdmissionNumber  string  `json:"admission_number" binding:"required"`
	FirstName        string  `json:"first_name" binding:"required"`
	LastName         string  `json:"last_name" binding:"required"`
	ClassID          *string `json:"class_id" binding:"omitempty,uuid"`
	EnrollmentTermID *string `json:"enrollment_term_id" binding:"omitempty,uuid"`
}

// CreateStudent handles POST /students
func (h *AcademicHandler) CreateStudent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appReq := appacademic.CreateStudentRequest{
		TenantID:        tenantID,
		AdmissionNumber: req.AdmissionNumber,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	}
	if req.ClassID != nil {
		classID, err := uuid.Parse(*req.ClassID)
		if err != nil {
			h.BadRequest(c, "Invalid class ID format")
			return
		}
		appReq.ClassID = &classID
	}
	if req.EnrollmentTermID != nil {
		termID, err := uuid.Parse(*req.EnrollmentTermID)
		if err != nil {
			h.BadRequest(c, "Invalid enrollment term ID format")
			return
		}
		appReq.EnrollmentTermID = &termID
	}

	student, err := h.academicService.CreateStudent(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, student)
}

// ListStudents handles GET /students
func (h *AcademicHandler) ListStudents(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindingError(c, err)
		return
	}

	students, err := h.academicService.ListStudents(c.Request.Context(), tenantID, listReq.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, students)
}

// GetStudent handles GET /students/:id
func (h *AcademicHandler) GetStudent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	studentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	student, err := h.academicService.GetStudent(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// UpdateEnrollmentRequest is the request body for adjusting a student's
// class or billing window
type UpdateEnrollmentRequest struct {
	ClassID          *string `json:"class_id" binding:"omitempty,uuid"`
	EnrollmentTermID *string `json:"enrollment_term_id" binding:"omitempty,uuid"`
	GraduationTermID *string `json:"graduation_term_id" binding:"omitempty,uuid"`
}

// UpdateEnrollment handles PATCH /students/:id/enrollment
func (h *AcademicHandler) UpdateEnrollment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	studentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	var req UpdateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	appReq := appacademic.UpdateEnrollmentRequest{
		TenantID:  tenantID,
		StudentID: studentID,
	}
	parse := func(s *string, dest **uuid.UUID) bool {
		if s == nil {
			return true
		}
		id, err := uuid.Parse(*s)
		if err != nil {
			return false
		}
		*dest = &id
		return true
	}
	if !parse(req.ClassID, &appReq.ClassID) ||
		!parse(req.EnrollmentTermID, &appReq.EnrollmentTermID) ||
		!parse(req.GraduationTermID, &appReq.GraduationTermID) {
		h.BadRequest(c, "Invalid UUID format in request body")
		return
	}

	student, err := h.academicService.UpdateEnrollment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, student)
}

// RecordEnrollmentRequest is the request body for creating an academic
// record
type RecordEnrollmentRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	TermID    string  `json:"term_id" binding:"required,uuid"`
	ClassID   *string `json:"class_id" binding:"omitempty,uuid"`
	Status    string  `json:"status" binding:"required,enrollment_status"`
}

// RecordEnrollment handles POST /academic-records
func (h *AcademicHandler) RecordEnrollment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RecordEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}
	termID, err := uuid.Parse(req.TermID)
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	appReq := appacademic.RecordEnrollmentRequest{
		TenantID:  tenantID,
		StudentID: studentID,
		TermID:    termID,
		Status:    academic.EnrollmentStatus(req.Status),
	}
	if req.ClassID != nil {
		classID, err := uuid.Parse(*req.ClassID)
		if err != nil {
			h.BadRequest(c, "Invalid class ID format")
			return
		}
		appReq.ClassID = &classID
	}

	record, err := h.academicService.RecordEnrollment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// ListTermRecords handles GET /terms/:id/records
func (h *AcademicHandler) ListTermRecords(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	termID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid term ID format")
		return
	}

	filter := academic.AcademicRecordFilter{}
	if v := c.Query("status"); v != "" {
		status := academic.EnrollmentStatus(v)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid enrollment status")
			return
		}
		filter.Status = &status
	}

	records, err := h.academicService.ListRecordsByTerm(c.Request.Context(), tenantID, termID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// ListStudentRecords handles GET /students/:id/records
func (h *AcademicHandler) ListStudentRecords(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	studentID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid student ID format")
		return
	}

	records, err := h.academicService.ListRecordsByStudent(c.Request.Context(), tenantID, studentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}
