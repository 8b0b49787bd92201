package logger

import (
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"
)

type settings struct {
	Level      string   `env:"MIRA_LOG_LEVEL" envDefault:"error"`
	Categories []string `env:"MIRA_LOG_CATEGORIES" envSeparator:","`
}

func initConfig() {
	var s settings
	if err := env.Parse(&s); err != nil {
		log.SetLevel(logrus.ErrorLevel)
		return
	}

	if lvl, err := logrus.ParseLevel(s.Level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}

	for _, cat := range s.Categories {
		cat = strings.TrimSpace(strings.ToUpper(cat))
		if cat != "" {
			EnableCategory(cat)
		}
	}
}
