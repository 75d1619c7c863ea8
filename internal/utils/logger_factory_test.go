package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/gmux/internal/utils"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectError        bool
		expectedLevel      zapcore.Level
	}{
		{
			name:               "debug_structured",
			requestedLogLevel:  utils.LogLevelDebug,
			requestedLogFormat: utils.LogFormatStructured,
			expectedLevel:      zapcore.DebugLevel,
		},
		{
			name:               "warn_console",
			requestedLogLevel:  utils.LogLevelWarn,
			requestedLogFormat: utils.LogFormatConsole,
			expectedLevel:      zapcore.WarnLevel,
		},
		{
			name:               "case_insensitive_values",
			requestedLogLevel:  utils.LogLevel(" ERROR "),
			requestedLogFormat: utils.LogFormat("Console"),
			expectedLevel:      zapcore.ErrorLevel,
		},
		{
			name:               "unsupported_level",
			requestedLogLevel:  utils.LogLevel("verbose"),
			requestedLogFormat: utils.LogFormatConsole,
			expectError:        true,
		},
		{
			name:               "unsupported_format",
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat("xml"),
			expectError:        true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(subTest, creationError)
				require.Nil(subTest, logger)
				return
			}
			require.NoError(subTest, creationError)
			require.NotNil(subTest, logger)
			require.True(subTest, logger.Core().Enabled(testCase.expectedLevel))
			if testCase.expectedLevel > zapcore.DebugLevel {
				require.False(subTest, logger.Core().Enabled(testCase.expectedLevel-1))
			}
		})
	}
}

func TestSupportedLogValuesAreAccepted(testInstance *testing.T) {
	loggerFactory := utils.NewLoggerFactory()
	for _, levelValue := range utils.SupportedLogLevels() {
		for _, formatValue := range utils.SupportedLogFormats() {
			logger, creationError := loggerFactory.CreateLogger(utils.LogLevel(levelValue), utils.LogFormat(formatValue))
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)
		}
	}
}
