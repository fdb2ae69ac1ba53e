package verbose

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 7, 9, 14, 3, 5, 0, time.FixedZone("CEST", 2*3600))
}

func TestSay(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(false), WithClock(fixedClock))

	require.NoError(t, p.Say("build finished"))
	assert.Equal(t, "[ Tue, 9 Jul 2024 12:03:05 +0000 ] :: build finished\n", buf.String())
}

func TestSayTwoDigitDay(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(false), WithClock(func() time.Time {
		return time.Date(2024, 11, 23, 8, 0, 0, 0, time.UTC)
	}))

	require.NoError(t, p.Say("ok"))
	assert.Equal(t, "[ Sat, 23 Nov 2024 08:00:00 +0000 ] :: ok\n", buf.String())
}

func TestSayfColored(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(true), WithClock(fixedClock))

	require.NoError(t, p.Sayf("%d rows", 12))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b[38;5;208m[ "), "got %q", out)
	assert.True(t, strings.HasSuffix(out, "12 rows\n"), "got %q", out)
}

func TestHeaderLinesAligned(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(false))

	err := p.HeaderLines(map[string]string{
		"Hostname":  "build-01",
		"CPU Cores": "8",
		"OS":        "linux",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"CPU Cores :: 8\n"+
			"Hostname  :: build-01\n"+
			"OS        :: linux\n",
		buf.String())
}

func TestHeaderLinesEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(false))

	require.NoError(t, p.HeaderLines(nil))
	assert.Empty(t, buf.String())
}

func TestPaddingLineWidth(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(false), WithWidth(10))

	require.NoError(t, p.PaddingLine())
	assert.Equal(t, "\n----------\n\n", buf.String())
}

func TestPaddingLineUnknownWidth(t *testing.T) {
	var buf bytes.Buffer
	// a buffer is not a terminal, so the width cannot be determined
	p := New(&buf, WithColor(false))

	require.NoError(t, p.PaddingLine())
	assert.Empty(t, buf.String())
}

func TestAnnounceMergesPreload(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, WithColor(false), WithWidth(4))

	err := p.Announce(
		map[string]string{"Hostname": "build-01"},
		map[string]string{"Config": "/etc/wolves.yaml", "Hostname": "ignored"},
	)
	require.NoError(t, err)

	assert.Equal(t,
		"Config: /etc/wolves.yaml\n"+
			"Hostname: ignored\n"+
			"\n----\n\n"+
			"Config   :: /etc/wolves.yaml\n"+
			"Hostname :: build-01\n"+
			"\n----\n\n",
		buf.String())
}
