package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/goliatone/go-scenesync"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func memoryArgs(t *testing.T, args ...string) []string {
	t.Helper()
	campaign := filepath.Join(t.TempDir(), "campaign.yaml")
	return append(args, "--store", "memory", "--settings", "memory", "--campaign", campaign, "--scene", "s1")
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("12, -4")
	assert.NilError(t, err)
	assert.Equal(t, p, scenesync.Point{X: 12, Y: -4})

	_, err = parsePoint("12")
	assert.ErrorContains(t, err, "want X,Y")
}

func TestSplitCount(t *testing.T) {
	text, n, err := splitCount("Climb: the wall:3")
	assert.NilError(t, err)
	assert.Equal(t, text, "Climb: the wall")
	assert.Equal(t, n, 3)

	text, n, err = splitCount("Orcs")
	assert.NilError(t, err)
	assert.Equal(t, text, "Orcs")
	assert.Equal(t, n, 0)

	_, _, err = splitCount("Orcs:many")
	assert.ErrorContains(t, err, "count must be a number")
}

func TestRollCommandIsSeeded(t *testing.T) {
	a, err := execute(t, "roll", "--seed", "5", "--name", "Zed")
	assert.NilError(t, err)
	b, err := execute(t, "roll", "--seed", "5", "--name", "Zed")
	assert.NilError(t, err)
	assert.Equal(t, a, b)
	assert.Assert(t, strings.HasPrefix(a, "Zed rolls Mysterious Skill"))
}

func TestSettingsPages(t *testing.T) {
	out, err := execute(t, "settings", "pages")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "FPManager"))
	assert.Assert(t, is.Contains(out, "ChallengeContestManager"))
}

func TestAspectsAddWritesWidget(t *testing.T) {
	out, err := execute(t, memoryArgs(t, "aspects", "add", "On Fire", "--invokes", "2")...)
	assert.NilError(t, err)
	assert.Equal(t, out, "aspects: created 1, updated 0, deleted 0, unchanged 0\n")
}

func TestDeleteWithoutConfirmationIsCancelled(t *testing.T) {
	dir := t.TempDir()
	campaign := filepath.Join(dir, "campaign.yaml")
	base := []string{"--store", "memory", "--settings", "memory", "--campaign", campaign}

	_, err := execute(t, append([]string{"aspects", "add", "Dark"}, base...)...)
	assert.NilError(t, err)

	_, err = execute(t, append([]string{"aspects", "delete", "0"}, base...)...)
	assert.Assert(t, scenesync.IsCancelled(err))

	_, err = execute(t, append([]string{"aspects", "delete", "0", "--yes"}, base...)...)
	assert.NilError(t, err)
}

func TestPointsNeedImage(t *testing.T) {
	_, err := execute(t, memoryArgs(t, "points", "sync")...)
	assert.Assert(t, is.ErrorContains(err, "fatePointImage"))
}
