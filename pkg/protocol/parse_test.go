package protocol

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	msg := Message{
		Priority:  27,
		Timestamp: time.Date(2026, 3, 5, 10, 56, 58, 901234000, time.UTC),
		Hostname:  "device01",
		AppName:   "main/0",
		ProcID:    "sensor_read",
		Text:      "timeout after 3 attempts",
	}

	parsed, err := Parse(append(Encode(msg, 512), '\n'))
	require.NoError(t, err)
	assert.Equal(t, msg.Priority, parsed.Priority)
	assert.True(t, msg.Timestamp.Equal(parsed.Timestamp))
	assert.Equal(t, msg.Hostname, parsed.Hostname)
	assert.Equal(t, msg.AppName, parsed.AppName)
	assert.Equal(t, msg.ProcID, parsed.ProcID)
	assert.Empty(t, parsed.MsgID)
	assert.Equal(t, msg.Text, parsed.Text)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "<27>1 - host app"},
		{"missing bracket", "27>1 - h a p - - text"},
		{"pri out of range", "<192>1 - h a p - - text"},
		{"pri too long", "<0027>1 - h a p - - text"},
		{"wrong version", "<27>2 - h a p - - text"},
		{"bad timestamp", "<27>1 yesterday h a p - - text"},
		{"structured data", "<27>1 - h a p - [x@1 a=\"b\"] text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.line))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))
		})
	}
}

func TestParseNoText(t *testing.T) {
	msg, err := Parse([]byte("<0>1 - - - - - -"))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), msg.Priority)
	assert.True(t, msg.Timestamp.IsZero())
	assert.Empty(t, msg.Text)
}

func TestReplaceHost(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		host         string
		expect       string
		expectChange bool
	}{
		{
			name:         "placeholder patched",
			line:         "<27>1 2026-03-05T10:56:58.901234Z @HOST@ main/0 f - - text",
			host:         "device01",
			expect:       "<27>1 2026-03-05T10:56:58.901234Z device01 main/0 f - - text",
			expectChange: true,
		},
		{
			name:   "known host untouched",
			line:   "<27>1 2026-03-05T10:56:58.901234Z other main/0 f - - @HOST@",
			host:   "device01",
			expect: "<27>1 2026-03-05T10:56:58.901234Z other main/0 f - - @HOST@",
		},
		{
			name:         "host with space cleaned",
			line:         "<27>1 - @HOST@ main/0 f - - text",
			host:         "my device",
			expect:       "<27>1 - my_device main/0 f - - text",
			expectChange: true,
		},
		{
			name:   "empty host keeps placeholder",
			line:   "<27>1 - @HOST@ main/0 f - - text",
			host:   "",
			expect: "<27>1 - @HOST@ main/0 f - - text",
		},
		{
			name:   "truncated line",
			line:   "<27>1 -",
			host:   "device01",
			expect: "<27>1 -",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := ReplaceHost([]byte(tt.line), "@HOST@", tt.host)
			assert.Equal(t, tt.expect, string(got))
			assert.Equal(t, tt.expectChange, changed)
		})
	}
}
