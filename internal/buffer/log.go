package buffer

import "github.com/sirupsen/logrus"

var log = logrus.WithField("component", "buffer")
