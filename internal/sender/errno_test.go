package sender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeErrno(t *testing.T) {
	tests := []struct {
		code   int
		expect string
	}{
		{5, "EIO (5): input/output error"},
		{-5, "EIO (5): input/output error"},
		{110, "ETIMEDOUT (110): connection timed out"},
		{4000, "E4000 (4000): errno 4000"},
	}
	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, describeErrno(tt.code))
		})
	}
}
