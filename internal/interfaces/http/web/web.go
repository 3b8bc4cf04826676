// Package web 提供内嵌的页面模板
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// IndexTemplate 表单页模板名
const IndexTemplate = "index.html"

// Templates 解析全部内嵌模板
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templatesFS, "templates/*.html")
}
