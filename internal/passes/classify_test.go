package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, PassTypeHome, Classify("NAO", "NAO"))
	assert.Equal(t, PassTypeVisitor, Classify("GE", "NAO"))
	assert.Equal(t, PassTypeVisitor, Classify("NAO", "GE"))
}
