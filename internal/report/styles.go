package report

// rgb is a colour in 0-255 components.
type rgb struct{ R, G, B int }

var (
	passColor  = rgb{34, 139, 34}
	failColor  = rgb{200, 30, 45}
	titleColor = rgb{17, 24, 39}
	textColor  = rgb{31, 41, 55}
	mutedColor = rgb{128, 128, 128}
	white      = rgb{255, 255, 255}
)

const (
	fontFamily   = "Helvetica"
	titleSize    = 18
	bannerSize   = 14
	headingSize  = 12
	bodySize     = 11
	footnoteSize = 9
	marginMM     = 20
	lineHeightMM = 6
)
