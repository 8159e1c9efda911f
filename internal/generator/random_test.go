package generator_test

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/multiclouddemo/message-pipeline/internal/domain"
	"github.com/multiclouddemo/message-pipeline/internal/generator"
)

var shape = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+ [a-z]+ at \d{2}:\d{2}:\d{2}$`)

func TestMessage_Deterministic(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 5, 7, 0, time.UTC)

	a := generator.Message(rand.New(rand.NewSource(42)), now)
	b := generator.Message(rand.New(rand.NewSource(42)), now)

	assert.Equal(t, a, b)
	assert.Regexp(t, shape, a)
	assert.Contains(t, a, "at 09:05:07")
}

func TestMessage_AlwaysValidContent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		msg := generator.Message(r, time.Now())
		assert.NoError(t, domain.ValidateContent(msg), msg)
	}
}
