package embedded

import (
	"embed"
)

// Content 包含内嵌的默认配置与示例环境
// 当外部文件不存在时由 config 包回退使用。
//
//go:embed config/*.yaml
var Content embed.FS
