// Package autoload initializes the global logger from the LOG-prefixed
// environment on import.
package autoload

import (
	configx "github.com/idurar/emily-assistant/pkg/config"
	logx "github.com/idurar/emily-assistant/pkg/logger"
)

func init() {
	cfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		logx.Init()
		return
	}
	logx.Init(*cfg)
}
