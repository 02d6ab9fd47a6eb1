package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormLogger "gorm.io/gorm/logger"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("THESIS_TEST_STR", "  value ")
	t.Setenv("THESIS_TEST_INT", "42")
	t.Setenv("THESIS_TEST_BAD_INT", "x")
	t.Setenv("THESIS_TEST_BOOL", "false")
	t.Setenv("THESIS_TEST_LIST", "a, b,,c")

	assert.Equal(t, "value", GetEnv("THESIS_TEST_STR"))
	assert.Equal(t, "fallback", GetEnv("THESIS_TEST_MISSING", "fallback"))
	assert.Equal(t, 42, GetEnvInt("THESIS_TEST_INT", 1))
	assert.Equal(t, 7, GetEnvInt("THESIS_TEST_BAD_INT", 7))
	assert.False(t, GetEnvBool("THESIS_TEST_BOOL", true))
	assert.True(t, GetEnvBool("THESIS_TEST_MISSING", true))
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvList("THESIS_TEST_LIST", nil))
	assert.Equal(t, []string{"d"}, GetEnvList("THESIS_TEST_MISSING", []string{"d"}))
}

func TestLoadEnvReadsJWTSettings(t *testing.T) {
	t.Setenv("RAILWAY_ENVIRONMENT", "test")
	t.Setenv("JWT_SECRET", "abc")
	t.Setenv("JWT_TTL_HOURS", "2")
	LoadEnv()
	assert.Equal(t, "abc", JWTSecret)
	assert.Equal(t, "2h0m0s", JWTTTL.String())
}

func TestGormLoggerLevels(t *testing.T) {
	assert.Equal(t, gormLogger.Silent, ParseGormLogLevel("SILENT"))
	assert.Equal(t, gormLogger.Warn, ParseGormLogLevel(""))

	l := NewGormLogger().(*GormLogger)
	quiet := l.LogMode(gormLogger.Silent).(*GormLogger)
	assert.Equal(t, gormLogger.Silent, quiet.LogLevel)
	assert.NotEqual(t, gormLogger.Silent, l.LogLevel)
}
