package dashboard

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates
var templates embed.FS

// Layout wraps every signed-in page.
const Layout = "layouts/main"

// NewEngine returns the view engine for the embedded templates.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("yen", func(p *int64) string {
		if p == nil {
			return "-"
		}
		return formatYen(*p)
	})
	engine.AddFunc("yenInt", formatYen)
	engine.AddFunc("pct", func(bp *int64) string {
		if bp == nil {
			return "-"
		}
		return decimal.New(*bp, -2).StringFixed(2) + "%"
	})
	return engine
}

// formatYen renders 1234567 as "¥1,234,567".
func formatYen(v int64) string {
	digits := strconv.FormatInt(v, 10)
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "¥" + b.String()
}
