package tui

// Package-level constants to avoid magic numbers and improve readability.
const (
	channelBufferSize = 256

	// viewfinder is the framed scan area.
	viewfinderWidth  = 28
	viewfinderHeight = 7
	// contentMaxWidth caps the progress bar and result card width.
	contentMaxWidth = 60
	contentMinWidth = 20

	// Colors (256-color palette).
	grayColor   = "241"
	dimColor    = "240"
	wineColor   = "125"
	greenColor  = "46"
	yellowColor = "226"
	redColor    = "196"
)
