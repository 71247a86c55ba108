package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "student-service:students:departments", Key("students", "departments"))
	assert.Equal(t, "student-service:admissions:*", Key("admissions", "*"))
	assert.Equal(t, "student-service:", Key())
}
