package web

import "embed"

// StaticFS 嵌入的前端静态文件
//
//go:embed index.html
var StaticFS embed.FS
