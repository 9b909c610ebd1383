// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import "time"

// InputFocus is the part of the client receiving input.
type InputFocus uint8

// Input focus values.
const (
	FocusGame InputFocus = iota
	FocusConsole
	FocusMenu
)

// String returns the focus name.
func (f InputFocus) String() string {
	switch f {
	case FocusGame:
		return "game"
	case FocusConsole:
		return "console"
	case FocusMenu:
		return "menu"
	default:
		return "unknown"
	}
}

// Console is the visible part of the console.
type Console struct {
	// Output holds the scrollback, oldest line first.
	Output []string
	// Input is the line being edited.
	Input string
	// Cursor is the byte offset of the cursor within Input.
	Cursor int
}

// Menu is the visible part of the active menu.
type Menu struct {
	// Title and Plaque are picture names. Empty names are not drawn.
	Title  string
	Plaque string
	Items  []string
	// Selected indexes Items.
	Selected int
}

// Overlay is drawn above the HUD. It is nil, *ConsoleOverlay or *MenuOverlay.
type Overlay interface{ isOverlay() }

// ConsoleOverlay shows the console.
type ConsoleOverlay struct{ Console *Console }

// MenuOverlay shows a menu.
type MenuOverlay struct{ Menu *Menu }

func (*ConsoleOverlay) isOverlay() {}
func (*MenuOverlay) isOverlay()    {}

// SelectOverlay returns the overlay for focus. The console is shown only
// with console focus and the menu only with menu focus; game focus shows
// neither. A missing surface yields no overlay.
func SelectOverlay(focus InputFocus, console *Console, menu *Menu) Overlay {
	switch focus {
	case FocusConsole:
		if console != nil {
			return &ConsoleOverlay{Console: console}
		}
	case FocusMenu:
		if menu != nil {
			return &MenuOverlay{Menu: menu}
		}
	}
	return nil
}

// Item is a bit of the inventory mask.
type Item uint32

// Items with a HUD icon.
const (
	ItemShells          Item = 1 << 8
	ItemArmor1          Item = 1 << 13
	ItemKey1            Item = 1 << 17
	ItemKey2            Item = 1 << 18
	ItemInvisibility    Item = 1 << 19
	ItemInvulnerability Item = 1 << 20
	ItemSuit            Item = 1 << 21
	ItemQuad            Item = 1 << 22
)

// Stats are the player counters shown by the HUD.
type Stats struct {
	Health, Armor, Ammo   int32
	Kills, TotalKills     int32
	Secrets, TotalSecrets int32
}

// IntermissionKind distinguishes the end-of-level screens.
type IntermissionKind uint8

// Intermission kinds.
const (
	IntermissionNone IntermissionKind = iota
	IntermissionLevel
	IntermissionFinale
	IntermissionCutscene
)

// HudState is *HudActive or *HudIntermission.
type HudState interface{ isHudState() }

// HudActive is the status bar during play.
type HudActive struct {
	Stats Stats
	Items Item
	// PickupTimes holds the client time each item bit was last picked up.
	PickupTimes [32]time.Duration
	// FaceAnimTime is the client time until which the pain face shows.
	FaceAnimTime time.Duration
}

// HudIntermission is the end-of-level screen.
type HudIntermission struct {
	Kind IntermissionKind
	// Completion is the time the level took.
	Completion time.Duration
	Stats      Stats
}

func (*HudActive) isHudState()       {}
func (*HudIntermission) isHudState() {}

// State is *Title or *InGame.
type State interface{ isState() }

// Title is the title screen, with no world loaded.
type Title struct{ Overlay Overlay }

// InGame is a connected client with a HUD.
type InGame struct {
	Hud     HudState
	Overlay Overlay
}

func (*Title) isState()  {}
func (*InGame) isState() {}
