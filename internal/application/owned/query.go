package owned

import (
	"strings"

	"github.com/farmsaathi/backend/internal/domain/shared"
)

// ListQuery is the query string of every owned listing
type ListQuery struct {
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status"`
	Type     string `form:"type"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Filter maps the query onto a repository filter. statusColumn and
// typeColumn name the columns the status and type parameters compare with;
// an empty column ignores the parameter.
func (q ListQuery) Filter(statusColumn, typeColumn string) shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   strings.TrimSpace(q.Search),
		Filters:  make(map[string]interface{}),
	}
	if v := strings.TrimSpace(q.Status); v != "" && statusColumn != "" {
		f.Filters[statusColumn] = v
	}
	if v := strings.TrimSpace(q.Type); v != "" && typeColumn != "" {
		f.Filters[typeColumn] = v
	}
	return f
}
