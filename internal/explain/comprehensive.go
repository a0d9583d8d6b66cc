package explain

// Cross-modal insights.
const (
	InsightBothManipulated = "Both text and image show signs of manipulation"
	InsightTextOnly        = "Text appears suspicious but image seems authentic"
	InsightImageOnly       = "Image shows manipulation but text appears credible"
	InsightBothAuthentic   = "Both text and image appear authentic"
)

// Score bands for comprehensive recommendations.
const (
	highBand   = 0.7
	mediumBand = 0.4
)

var (
	highRecommendations = []string{
		"High likelihood of fake content detected",
		"Verify all information with multiple sources",
		"Check for official statements or press releases",
		"Use fact-checking websites for verification",
		"Be extremely cautious when sharing this content",
	}
	mediumRecommendations = []string{
		"Some suspicious elements detected",
		"Verify information independently",
		"Check multiple sources for confirmation",
		"Consider the source and context carefully",
	}
	lowRecommendations = []string{
		"Content appears to be authentic",
		"Still verify with independent sources",
		"Check for recent updates or corrections",
		"Consider the overall context and source credibility",
	}
)

// CrossModalInsight picks the insight for a pair of verdicts.
func CrossModalInsight(textFake, imageFake bool) string {
	switch {
	case textFake && imageFake:
		return InsightBothManipulated
	case textFake:
		return InsightTextOnly
	case imageFake:
		return InsightImageOnly
	default:
		return InsightBothAuthentic
	}
}

// Recommendations returns the menu for an overall score: above 0.7, above
// 0.4, or the rest.
func Recommendations(overall float64) []string {
	switch {
	case overall > highBand:
		return clone(highRecommendations)
	case overall > mediumBand:
		return clone(mediumRecommendations)
	default:
		return clone(lowRecommendations)
	}
}
