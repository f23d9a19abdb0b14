package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glefebvre/mediadesk/internal/bulk"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "14", "15"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 14, 15}, ids)

	_, err = parseIDs([]string{"3", "x"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = parseIDs([]string{"0"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestExitCode(t *testing.T) {
	_, err := parseIDs([]string{"x"})
	assert.Equal(t, 2, exitCode(err))
	assert.Equal(t, 2, exitCode(fmt.Errorf("edit: %w", apperrors.ValidationError("mixed selection"))))
	assert.Equal(t, 1, exitCode(apperrors.ExternalServiceError("mediaserver", "down", nil)))
	assert.Equal(t, 1, exitCode(errors.New("unknown command")))
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	res := bulk.Result{
		Succeeded: []int{1},
		Failed:    []bulk.Failure{{ID: 2, Err: errors.New("boom")}},
		Skipped:   []bulk.Skip{{ID: 3, Reason: "season or episode unknown"}},
	}

	err := printResult(&out, res)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "ok       1\n")
	assert.Contains(t, out.String(), "failed   2: boom\n")
	assert.Contains(t, out.String(), "skipped  3: season or episode unknown\n")
	assert.Contains(t, out.String(), "1 succeeded, 1 failed, 1 skipped\n")

	out.Reset()
	assert.NoError(t, printResult(&out, bulk.Result{Succeeded: []int{4}}))
}

func TestPrintOutcome(t *testing.T) {
	var out bytes.Buffer
	printOutcome(&out, "collection", picker.Confirmed(7))
	printOutcome(&out, "collection", picker.Cancelled[int](picker.ReasonNothingSelected))
	assert.Equal(t, "collection: 7\ncollection cancelled (nothing selected)\n", out.String())
}

func TestRenderVideo(t *testing.T) {
	v := models.Video{
		ID:        9,
		Path:      "/media/tv/Dark/Dark.S01E02.mkv",
		MediaType: models.MediaTypeTV,
	}
	assert.Contains(t, renderVideo(v), "Dark.S01E02.mkv")
	assert.Contains(t, renderVideo(v), "tv")
}
