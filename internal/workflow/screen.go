package workflow

// Screen is one step of the cubing workflow.
type Screen string

const (
	ScreenLogin        Screen = "login"
	ScreenTrailer      Screen = "trailer"
	ScreenProHeader    Screen = "pro_header"
	ScreenPalletDetail Screen = "pallet_detail"
	ScreenSummary      Screen = "summary"
)

// ParseScreen maps a stored resume value onto a Screen. Unknown values land
// on the trailer screen and report false.
func ParseScreen(s string) (Screen, bool) {
	switch Screen(s) {
	case ScreenLogin, ScreenTrailer, ScreenProHeader, ScreenPalletDetail, ScreenSummary:
		return Screen(s), true
	default:
		return ScreenTrailer, false
	}
}
