package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"warden/internal/capture"
	"warden/internal/tools"
)

func newCaptureRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	reg := tools.NewRegistry()
	d := Deps{Capture: capture.New(capture.GDIGrabber{}, 85)}
	require.NoError(t, registerCaptureTools(reg, d))
	return reg
}

func TestVisualDiffRoundTripNoChange(t *testing.T) {
	reg := newCaptureRegistry(t)

	before := reg.Get("visual_diff")
	require.NotNil(t, before)
	items, err := before.Execute(context.Background(), map[string]any{"description": "about to click save"})
	require.NoError(t, err)

	var beforeResp map[string]any
	require.NoError(t, json.Unmarshal([]byte(items[0].Text), &beforeResp))
	diffID, _ := beforeResp["diff_id"].(string)
	require.NotEmpty(t, diffID)

	compare := reg.Get("visual_diff_compare")
	require.NotNil(t, compare)
	items, err = compare.Execute(context.Background(), map[string]any{"diff_id": diffID})
	require.NoError(t, err)

	var compareResp map[string]any
	require.NoError(t, json.Unmarshal([]byte(items[0].Text), &compareResp))
	report, ok := compareResp["report"].(map[string]any)
	require.True(t, ok)
	require.False(t, report["changed"].(bool))
}

func TestVisualDiffCompareUnknownIDFails(t *testing.T) {
	reg := newCaptureRegistry(t)
	compare := reg.Get("visual_diff_compare")
	_, err := compare.Execute(context.Background(), map[string]any{"diff_id": "nope"})
	require.Error(t, err)
}

func TestVisualDiffCompareConsumesState(t *testing.T) {
	reg := newCaptureRegistry(t)

	before := reg.Get("visual_diff")
	items, err := before.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	var beforeResp map[string]any
	require.NoError(t, json.Unmarshal([]byte(items[0].Text), &beforeResp))
	diffID := beforeResp["diff_id"].(string)

	compare := reg.Get("visual_diff_compare")
	_, err = compare.Execute(context.Background(), map[string]any{"diff_id": diffID})
	require.NoError(t, err)

	_, err = compare.Execute(context.Background(), map[string]any{"diff_id": diffID})
	require.Error(t, err, "a diff_id can only be compared once")
}
