package cmd

import (
	"fmt"
	"testing"

	"asset-registry/core/reconcile"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrintReconcileReport(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	plan := &reconcile.Plan{Summary: reconcile.PlanSummary{TotalItems: 9, Orphans: 1, PurgeActions: 7}}
	for i := 0; i < 7; i++ {
		plan.Actions = append(plan.Actions, reconcile.Action{Type: reconcile.ActionDropEntry, Key: fmt.Sprintf("g-%d", i), Reason: "missing in catalog"})
	}

	printReconcileReport(l, plan)

	assert.Equal(t, 1, logs.FilterMessage("Audit report").Len())
	assert.Equal(t, 5, logs.FilterMessage("Sample action").Len())
	extra := logs.FilterMessage("Additional actions not shown").All()
	if assert.Len(t, extra, 1) {
		assert.Equal(t, int64(2), extra[0].ContextMap()["count"])
	}
}

func TestPrintReconcileReport_NoActions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	printReconcileReport(zap.New(core), &reconcile.Plan{})

	assert.Equal(t, 1, logs.Len())
}

func TestConfirmation(t *testing.T) {
	t.Cleanup(func() { dryRun, yesConfirm = false, false })

	dryRun, yesConfirm = true, true
	c := confirmation()
	assert.True(t, c.DryRun)
	assert.False(t, c.Confirmed)

	dryRun = false
	c = confirmation()
	assert.False(t, c.DryRun)
	assert.True(t, c.Confirmed)
}

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"init"}, {"load"}, {"list"}, {"add"}, {"remove"}, {"import"}, {"relabel"},
		{"labels", "reorder"}, {"labels", "scope"}, {"rename-to-id"}, {"fix-references"},
		{"reset-addresses"}, {"save-group"}, {"catalog", "add"}, {"audit"},
	} {
		c, _, err := RootCmd.Find(path)
		if assert.NoError(t, err, path) {
			assert.Equal(t, path[len(path)-1], c.Name())
		}
	}
}
