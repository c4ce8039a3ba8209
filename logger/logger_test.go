package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestStringToLogrusLogType(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{input: "error", expected: logrus.ErrorLevel},
		{input: "WARN", expected: logrus.WarnLevel},
		{input: "Info", expected: logrus.InfoLevel},
		{input: "debug", expected: logrus.DebugLevel},
		{input: "verbose", expected: logrus.ErrorLevel},
		{input: "", expected: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StringToLogrusLogType(tt.input))
		})
	}
}
