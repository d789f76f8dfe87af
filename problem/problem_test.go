package problem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	list := &List{}
	assert.Zero(t, list.Count())
	assert.Empty(t, list.Summary())

	list.Add("bucket %s not reachable: %s", "demo-lab-1", "timeout").
		Add("throttled")

	assert.Equal(t, 2, list.Count())
	assert.Len(t, list.Errors(), 2)
	assert.Equal(t, []string{
		"bucket demo-lab-1 not reachable: timeout",
		"throttled",
	}, list.Summary())
}
