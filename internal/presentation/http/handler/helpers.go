package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
	"github.com/sangkips/hisab-api/internal/presentation/http/middleware"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sangkips/hisab-api/pkg/pagination"
)

const (
	// maxUploadSize bounds CSV and logo uploads
	maxUploadSize = 8 << 20

	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// currentSession returns the request's session or writes a 401
func currentSession(c *gin.Context) (*account.Session, bool) {
	sess := middleware.GetSession(c)
	if sess == nil {
		response.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	return sess, true
}

// parseID parses the :id path parameter or writes a 400
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and per_page from the query string
func pageParams(c *gin.Context) *pagination.PaginationParams {
	params := pagination.DefaultPagination()
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		params.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil {
		params.PerPage = perPage
	}
	params.Validate()
	return params
}

// bindJSON binds the body into req. Binding tag failures become 422 field
// errors, anything else a 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		bindError(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		bindError(c, err)
		return false
	}
	return true
}

func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, "Invalid request body")
		return
	}
	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	response.ValidationError(c, fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "decimal_gte0":
		return "must be a non-negative amount"
	case "uuid":
		return "must be a valid ID"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "txkind":
		return "must be sale, payment, opening_balance or imported"
	case "entrytype":
		return "must be income or expense"
	}
	return "is invalid"
}

// readUpload reads the named multipart file, bounded by maxUploadSize
func readUpload(c *gin.Context, field string) (string, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fh, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, "File field '"+field+"' is required")
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return "", nil, false
	}
	defer f.Close()

	data := make([]byte, fh.Size)
	if _, err := io.ReadFull(f, data); err != nil {
		response.BadRequest(c, "Unable to read uploaded file")
		return "", nil, false
	}
	return fh.Filename, data, true
}

// attachment sets the download headers for a generated file
func attachment(c *gin.Context, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}
