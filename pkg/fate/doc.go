// Package fate drives the Fate table widgets of a scene: fate-point pools,
// the situation-aspect widget, player panels, challenges and contests.
//
// Every operation reads campaign data through the Campaign port, resolves
// its layout from a settings page and hands the desired widgets to a
// scenesync.Syncer, so re-running any operation converges on the same scene.
package fate
