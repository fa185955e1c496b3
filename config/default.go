package config

import _ "embed"

// DefaultConfigYAML 嵌入的默认配置，外部配置文件与环境变量可逐项覆盖
//
//go:embed default.yaml
var DefaultConfigYAML []byte
