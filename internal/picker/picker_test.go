package picker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/cc-fi/internal"
	"github.com/iksnae/cc-fi/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFzf writes an executable shell script standing in for fzf
func fakeFzf(t *testing.T, body string) (bin, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir = testutil.CreateTempDir(t)
	bin = filepath.Join(dir, "fzf")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > \"" + dir + "/args\"\n" + body + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin, dir
}

func testPicker(bin string) *FzfPicker {
	p := NewFzfPicker(internal.DefaultConfig().Picker, "'/usr/local/bin/cc-fi'", 100)
	p.Binary = bin
	p.Stderr = io.Discard
	return p
}

func sampleEntries() []Entry {
	return []Entry{
		{Visible: "api-server  fix login", Searchable: "rate limiting", ID: "11111111-aaaa"},
		{Visible: "web-client  styling", Searchable: "css grid", ID: "22222222-bbbb"},
	}
}

func TestEncodeDecode(t *testing.T) {
	e := Entry{Visible: "\x1b[32mapi\x1b[0m row", Searchable: "hidden words", ID: "abc-123"}

	line := Encode(e, 40)
	fields := strings.Split(line, Separator)
	require.Len(t, fields, 3)
	assert.Equal(t, 41, lipgloss.Width(fields[0]), "visible part is padded past the width")
	assert.Equal(t, "hidden words", fields[1])
	assert.Equal(t, "abc-123", DecodeID(line))
	assert.Equal(t, "abc-123", DecodeID(line+"\n"))
}

func TestEncode_WideVisibleStillPadded(t *testing.T) {
	line := Encode(Entry{Visible: strings.Repeat("x", 50), ID: "id"}, 10)
	assert.True(t, strings.HasPrefix(line, strings.Repeat("x", 50)+" "+Separator))
}

func TestDecodeID_NoSeparator(t *testing.T) {
	assert.Empty(t, DecodeID("plain header line"))
	assert.Empty(t, DecodeID(""))
}

func TestBuildEntries(t *testing.T) {
	s := internal.CreateTestSessionWithMessages("s1", "first\nline", "last")
	s.FullContent = "alpha\x1fbeta\n" + strings.Repeat("z", 100)

	entries := BuildEntries([]internal.Session{s}, func(s internal.Session) string { return "row " + s.SessionID }, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "row s1", entries[0].Visible)
	assert.Equal(t, "s1", entries[0].ID)
	assert.NotContains(t, entries[0].Searchable, Separator)
	assert.NotContains(t, entries[0].Searchable, "\n")
	assert.Contains(t, entries[0].Searchable, "alpha beta")
	assert.Contains(t, entries[0].Searchable, "test-project")

	limited := BuildEntries([]internal.Session{s}, func(internal.Session) string { return "" }, 10)
	assert.Len(t, []rune(limited[0].Searchable), 10)
}

func TestArgs(t *testing.T) {
	p := testPicker("fzf")
	p.Query = "login"

	args := p.Args(4)
	assert.Contains(t, args, "--ansi")
	assert.Contains(t, args, "--exact")
	assert.Contains(t, args, "--no-hscroll")
	assert.Contains(t, args, "--delimiter="+Separator)
	assert.Contains(t, args, "--header-lines=4")
	assert.Contains(t, args, "--layout=reverse")
	assert.Contains(t, args, "--preview-window=down:50%")
	assert.Contains(t, strings.Join(args, " "), "--preview '/usr/local/bin/cc-fi' --preview {-1} --preview-query {q}")
	assert.Equal(t, []string{"--query", "login"}, args[len(args)-2:])
}

func TestPick_ReturnsSelectedID(t *testing.T) {
	// the header takes two lines, so line 4 is the second entry
	bin, dir := fakeFzf(t, "sed -n 4p")
	p := testPicker(bin)

	id, ok, err := p.Pick(context.Background(), []string{"help", "rule"}, sampleEntries())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "22222222-bbbb", id)

	args, err := os.ReadFile(filepath.Join(dir, "args"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "--header-lines=2")
}

func TestPick_Dismissed(t *testing.T) {
	for _, code := range []string{"1", "130"} {
		t.Run("exit "+code, func(t *testing.T) {
			bin, _ := fakeFzf(t, "cat > /dev/null; exit "+code)

			id, ok, err := testPicker(bin).Pick(context.Background(), nil, sampleEntries())
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, id)
		})
	}
}

func TestPick_OtherExitIsError(t *testing.T) {
	bin, _ := fakeFzf(t, "cat > /dev/null; exit 2")

	_, ok, err := testPicker(bin).Pick(context.Background(), nil, sampleEntries())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPick_EmptyOutputIsNoSelection(t *testing.T) {
	bin, _ := fakeFzf(t, "cat > /dev/null")

	_, ok, err := testPicker(bin).Pick(context.Background(), nil, sampleEntries())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPick_MissingBinary(t *testing.T) {
	p := testPicker("cc-fi-no-such-finder")

	_, _, err := p.Pick(context.Background(), nil, sampleEntries())
	var missing *internal.ToolMissingError
	require.True(t, errors.As(err, &missing), "err = %v", err)
	assert.Contains(t, err.Error(), "brew install fzf")
}

func TestPick_Canceled(t *testing.T) {
	bin, _ := fakeFzf(t, "cat > /dev/null; sleep 5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := testPicker(bin).Pick(ctx, nil, sampleEntries())
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
