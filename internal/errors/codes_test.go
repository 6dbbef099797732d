package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("load database: %w", Configuration("missing column %s", "N.HITS"))

	assert.True(t, stderrors.Is(err, ErrConfiguration))
	assert.False(t, stderrors.Is(err, ErrSchema))
	assert.True(t, HasCode(err, CodeConfiguration))
	assert.Equal(t, CodeConfiguration, CodeOf(err))
	assert.Contains(t, err.Error(), "missing column N.HITS")
}

func TestResourceUnwrapsCause(t *testing.T) {
	err := Resource(fs.ErrNotExist, "open %s", "genes.bed")

	assert.True(t, stderrors.Is(err, fs.ErrNotExist))
	assert.True(t, stderrors.Is(err, ErrResource))
	assert.Equal(t, "resource error: open genes.bed: file does not exist", err.Error())
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(stderrors.New("boom")))
	assert.False(t, HasCode(nil, CodeState))
}

func TestWithDetail(t *testing.T) {
	err := Schema("start >= end").WithDetail("line", 3)
	assert.Equal(t, 3, err.Details["line"])
}
