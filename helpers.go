package main

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mgmeyers/pdfmark/config"
)

func endIfErr(e error) {
	if e != nil {
		eLog := log.New(os.Stderr, "", 0)
		eLog.Fatalln(e)
	}
}

// newLogger appends to cfg.LogFile. With no log file set, logs go to stderr.
func newLogger(cfg config.Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "log level")
	}
	logger.SetLevel(level)

	if cfg.LogFile == "" {
		logger.SetOutput(os.Stderr)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log %s", cfg.LogFile)
	}
	logger.SetOutput(f)

	return logger, func() { f.Close() }, nil
}
