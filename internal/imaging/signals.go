package imaging

import (
	"fmt"
	"image"
	"strings"

	"NewsVerifier/internal/domain"
)

const (
	maxSamplesPerAxis = 256
	blockSize         = 8

	flatDelta       = 3
	edgeDelta       = 40
	jumpDelta       = 120
	blockEdgeDelta  = 24
	blockInnerDelta = 8

	edgeInconsistencyThreshold = 0.35
	colorJumpThreshold         = 0.15
)

const (
	baselineScore          = 85
	highCompression        = 0.8
	highArtifacts          = 0.3
	lowDiversity           = 0.1
	highDiversity          = 0.8
	compressionPenalty     = 10
	artifactPenalty        = 15
	indicatorPenalty       = 20
	lowDiversityPenalty    = 10
	highDiversityBonus     = 5
	noAnomaliesExplanation = "No significant anomalies"
)

type rgb struct{ r, g, b uint8 }

func toRGB(img image.Image, x, y int) rgb {
	r, g, b, _ := img.At(x, y).RGBA()
	return rgb{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func delta(a, b rgb) int {
	return (absDiff(a.r, b.r) + absDiff(a.g, b.g) + absDiff(a.b, b.b)) / 3
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func axisStep(n int) int {
	step := (n + maxSamplesPerAxis - 1) / maxSamplesPerAxis
	if step < 1 {
		return 1
	}
	return step
}

// Analyze computes the signal bundle of img on a bounded sampling grid.
func Analyze(img image.Image) domain.ImageSignals {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	signals := domain.ImageSignals{Width: width, Height: height}
	if width == 0 || height == 0 {
		return signals
	}

	stepX, stepY := axisStep(width), axisStep(height)
	cols := (width + stepX - 1) / stepX
	rows := (height + stepY - 1) / stepY

	grid := make([]rgb, 0, cols*rows)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			grid = append(grid, toRGB(img, bounds.Min.X+i*stepX, bounds.Min.Y+j*stepY))
		}
	}

	unique := make(map[rgb]struct{}, len(grid))
	for _, c := range grid {
		unique[c] = struct{}{}
	}

	var pairs, flat, edges, jumps int
	visit := func(a, b rgb) {
		d := delta(a, b)
		pairs++
		if d < flatDelta {
			flat++
		}
		if d > edgeDelta {
			edges++
		}
		if d > jumpDelta {
			jumps++
		}
	}
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			here := grid[j*cols+i]
			if i+1 < cols {
				visit(here, grid[j*cols+i+1])
			}
			if j+1 < rows {
				visit(here, grid[(j+1)*cols+i])
			}
		}
	}

	signals.SampledPixels = len(grid)
	signals.UniqueColors = len(unique)
	signals.ColorDiversity = ratio(len(unique), len(grid))
	signals.CompressionLevel = ratio(flat, pairs)
	signals.EdgeDensity = ratio(edges, pairs)
	signals.ColorJumpRatio = ratio(jumps, pairs)
	signals.ArtifactRatio = blockArtifacts(img, stepY)

	signals.Indicators = []string{}
	if signals.EdgeDensity > edgeInconsistencyThreshold {
		signals.Indicators = append(signals.Indicators, domain.IndicatorEdgeInconsistency)
	}
	if signals.ColorJumpRatio > colorJumpThreshold {
		signals.Indicators = append(signals.Indicators, domain.IndicatorColorJump)
	}
	return signals
}

// blockArtifacts measures the share of block-boundary pairs whose jump is not
// mirrored by the neighbouring pair inside the block.
func blockArtifacts(img image.Image, stepY int) float64 {
	bounds := img.Bounds()
	var boundaries, abrupt int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X + blockSize - 1; x+1 < bounds.Max.X; x += blockSize {
			if x-1 < bounds.Min.X {
				continue
			}
			edge := delta(toRGB(img, x, y), toRGB(img, x+1, y))
			inner := delta(toRGB(img, x-1, y), toRGB(img, x, y))
			boundaries++
			if edge > blockEdgeDelta && inner < blockInnerDelta {
				abrupt++
			}
		}
	}
	return ratio(abrupt, boundaries)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Score applies the fixed adjustment table to the baseline and explains which
// adjustments fired.
func Score(signals domain.ImageSignals) (int, string) {
	score := baselineScore
	var reasons []string

	if signals.CompressionLevel > highCompression {
		score -= compressionPenalty
		reasons = append(reasons, fmt.Sprintf("high compression level (%.2f)", signals.CompressionLevel))
	}
	if signals.ArtifactRatio > highArtifacts {
		score -= artifactPenalty
		reasons = append(reasons, fmt.Sprintf("block artifacts detected (%.2f)", signals.ArtifactRatio))
	}
	for _, indicator := range signals.Indicators {
		score -= indicatorPenalty
		reasons = append(reasons, "manipulation indicator: "+indicator)
	}
	if signals.ColorDiversity < lowDiversity {
		score -= lowDiversityPenalty
		reasons = append(reasons, fmt.Sprintf("low color diversity (%.2f)", signals.ColorDiversity))
	}
	if signals.ColorDiversity > highDiversity {
		score += highDiversityBonus
		reasons = append(reasons, fmt.Sprintf("rich color diversity (%.2f)", signals.ColorDiversity))
	}

	if len(reasons) == 0 {
		return domain.ClampScore(score), noAnomaliesExplanation
	}
	return domain.ClampScore(score), strings.Join(reasons, "; ")
}
