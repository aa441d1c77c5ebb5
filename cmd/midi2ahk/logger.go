package main

import "go.uber.org/zap"

var convertLog = zap.NewNop()
var transposeLog = zap.NewNop()

func enableDebugLogging(l *zap.Logger) {
	convertLog = l
	transposeLog = l
}
