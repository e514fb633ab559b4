package layout

// SpacingSM is the horizontal padding of cards, banners and modal text.
const SpacingSM = 2

// Modal width constants
const (
	ModalWidthSM = 50
	ModalWidthMD = 60
	ModalWidthLG = 70
)

// Modal height constants
const (
	ModalHeightSM = 10
	ModalHeightLG = 20
)

// Standard UI element heights
const (
	HeaderHeight = 5
	FooterHeight = 3
)

// DropdownMaxOptions caps the branch options shown at once.
const DropdownMaxOptions = 6

// CalculateContentHeight calculates available height for content after headers/footers
func CalculateContentHeight(windowHeight int) int {
	h := windowHeight - HeaderHeight - FooterHeight
	if h < 1 {
		return 1
	}
	return h
}

// CenterHorizontal calculates x position to center content
func CenterHorizontal(windowWidth, contentWidth int) int {
	if windowWidth <= contentWidth {
		return 0
	}
	return (windowWidth - contentWidth) / 2
}

// CenterVertical calculates y position to center content
func CenterVertical(windowHeight, contentHeight int) int {
	if windowHeight <= contentHeight {
		return 0
	}
	return (windowHeight - contentHeight) / 2
}
