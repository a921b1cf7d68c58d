package fate

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/goliatone/go-scenesync"
)

func TestPointsRequireImage(t *testing.T) {
	f := newFixture(t)
	_, err := f.table.Points().SyncAll(context.Background())
	assert.Assert(t, errors.Is(err, scenesync.ErrConfigMissing))
	assert.Equal(t, f.store.Len(testScene), 0)
}

func TestSyncAllPlacesPlayerAndGMMarkers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setImage(t)

	_, err := f.table.Points().SyncAll(ctx)
	assert.NilError(t, err)

	ana := f.objects(t, PlayerPoolTag("Player 1"))
	assert.Equal(t, len(ana), 4)
	assert.Equal(t, ana[0].Position, scenesync.Point{X: 1185, Y: 708})
	assert.Equal(t, ana[1].Position, scenesync.Point{X: 1185, Y: 728})
	assert.Equal(t, ana[0].Image, "tokens/fate-point.webp")
	assert.Equal(t, ana[0].Annotations["actor"], "c-ana")

	assert.Equal(t, len(f.objects(t, PlayerPoolTag("Player 2"))), 1)

	gm := f.objects(t, GMPoolTag)
	assert.Equal(t, len(gm), 2)
	assert.Equal(t, gm[1].Position, scenesync.Point{X: 2980, Y: 2220})

	// A second pass converges without store mutations.
	results, err := f.table.Points().SyncAll(ctx)
	assert.NilError(t, err)
	for _, res := range results {
		assert.Assert(t, !res.Changed(), "group %s changed", res.Group)
	}
}

func TestGiveAndTake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setImage(t)
	points := f.table.Points()

	_, err := points.Give(ctx, "Player 2")
	assert.NilError(t, err)
	assert.Equal(t, f.character(t, "c-zed").FatePoints.Current, 2)
	assert.Equal(t, len(f.objects(t, PlayerPoolTag("Player 2"))), 2)

	for range 3 {
		_, err = points.Take(ctx, "Player 2")
		assert.NilError(t, err)
	}
	assert.Equal(t, f.character(t, "c-zed").FatePoints.Current, 0)
	assert.Equal(t, len(f.objects(t, PlayerPoolTag("Player 2"))), 0)

	_, err = points.Give(ctx, "Player 3")
	assert.Assert(t, errors.Is(err, scenesync.ErrPrecondition))
}

func TestGMAdjustments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setImage(t)
	points := f.table.Points()

	_, err := points.GiveGM(ctx)
	assert.NilError(t, err)
	n, err := f.campaign.GMFatePoints(ctx, "gm")
	assert.NilError(t, err)
	assert.Equal(t, n, 3)
	assert.Equal(t, len(f.objects(t, GMPoolTag)), 3)

	for range 5 {
		_, err = points.TakeGM(ctx)
		assert.NilError(t, err)
	}
	n, err = f.campaign.GMFatePoints(ctx, "gm")
	assert.NilError(t, err)
	assert.Equal(t, n, 0)
}

func TestGMPoolShrinksFromItsLeftEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setImage(t)
	points := f.table.Points()

	_, err := points.SyncGM(ctx)
	assert.NilError(t, err)
	gm := f.objects(t, GMPoolTag)
	assert.Equal(t, len(gm), 2)
	assert.Equal(t, gm[0].Position, scenesync.Point{X: 3000, Y: 2220})
	assert.Equal(t, gm[1].Position, scenesync.Point{X: 2980, Y: 2220})

	// The leftmost marker goes, although it has the lowest x+y.
	res, err := points.TakeGM(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(res.Deleted), 1)
	assert.Equal(t, res.Deleted[0], gm[1].ID)
	gm = f.objects(t, GMPoolTag)
	assert.Equal(t, len(gm), 1)
	assert.Equal(t, gm[0].Position, scenesync.Point{X: 3000, Y: 2220})

	// Regrowing lands next to the survivor instead of on top of it.
	_, err = points.GiveGM(ctx)
	assert.NilError(t, err)
	gm = f.objects(t, GMPoolTag)
	assert.Equal(t, len(gm), 2)
	assert.Equal(t, gm[1].Position, scenesync.Point{X: 2980, Y: 2220})
}

func TestSyncAllWithoutGMWarns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setImage(t)
	f.campaign = NewMemoryCampaign(CampaignData{Characters: f.campaign.Snapshot().Characters})
	f.table.campaign = f.campaign

	_, err := f.table.Points().SyncAll(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, f.notes.Levels(), []string{"warn"})
}

func TestRefreshRaisesToRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.setImage(t)

	_, err := f.table.Points().Refresh(ctx)
	assert.NilError(t, err)
	assert.Equal(t, f.character(t, "c-zed").FatePoints.Current, 3)
	assert.Equal(t, f.character(t, "c-ana").FatePoints.Current, 4)
	assert.Equal(t, len(f.objects(t, PlayerPoolTag("Player 2"))), 3)
}

func TestNewSceneKeepsChosenAspects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithPrompter(StaticPrompter{Setup: NewSceneSetup{PlayerCount: 2, Keep: []string{"Crowded"}}}))
	f.setImage(t)

	assert.NilError(t, f.table.Points().NewScene(ctx))

	scene, err := f.campaign.Scene(ctx, testScene)
	assert.NilError(t, err)
	assert.DeepEqual(t, scene.Aspects, []SituationAspect{{Name: "Crowded", FreeInvokes: 1}})

	n, err := f.campaign.GMFatePoints(ctx, "gm")
	assert.NilError(t, err)
	assert.Equal(t, n, 2)

	zed := f.character(t, "c-zed")
	assert.DeepEqual(t, zed.Tracks[0].Boxes, []bool{false, false, false})
	assert.Equal(t, zed.Tracks[1].Aspect, "Bruised Ribs")

	widget := f.objects(t, AspectGroup)
	assert.Equal(t, len(widget), 1)
	assert.Equal(t, widget[0].Text, "Crowded (1)")
}

func TestNewSceneCancelled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithPrompter(StaticPrompter{Err: scenesync.ErrCancelled}))
	f.setImage(t)

	err := f.table.Points().NewScene(ctx)
	assert.Assert(t, scenesync.IsCancelled(err))
	scene, err := f.campaign.Scene(ctx, testScene)
	assert.NilError(t, err)
	assert.Equal(t, len(scene.Aspects), 2)
	assert.Equal(t, f.store.Len(testScene), 0)
}

func TestNewSceneNeedsPrompter(t *testing.T) {
	f := newFixture(t)
	f.setImage(t)
	err := f.table.Points().NewScene(context.Background())
	assert.Assert(t, errors.Is(err, scenesync.ErrPrecondition))
}
