package http

import (
	"embed"
	"fmt"
	"io/fs"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-admin/internal/domain"
	"github.com/spec-kit/org-admin/internal/events"
)

//go:embed all:views
var viewsFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 15:04"
)

// NewViews builds the html engine over the embedded templates.
func NewViews() (*html.Engine, error) {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(nethttp.FS(sub), ".html")
	engine.AddFuncMap(templateFuncs())
	return engine, nil
}

// StaticFS exposes the embedded css and js.
func StaticFS() (nethttp.FileSystem, error) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return nethttp.FS(sub), nil
}

func templateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"money":          money,
		"statusClass":    statusClass,
		"humanizeEvent":  humanizeEvent,
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateTimeLayout)
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func statusClass(s domain.EmployeeStatus) string {
	return "status-" + string(s)
}

// humanizeEvent turns "employee_created" into "Employee created".
func humanizeEvent(t events.EventType) string {
	s := strings.ReplaceAll(string(t), "_", " ")
	if s == "" {
		return s
	}
	return fmt.Sprintf("%s%s", strings.ToUpper(s[:1]), s[1:])
}
