package analyzer

// Emotion labels
const (
	Joy            = "joy"
	Satisfaction   = "satisfaction"
	Contentment    = "contentment"
	Disappointment = "disappointment"
	Frustration    = "frustration"
	Anger          = "anger"
)

// ClassifyEmotions maps a document score and magnitude onto emotion labels.
// Each band is tested on its own, so joy does not suppress the other
// positive bands.
func ClassifyEmotions(score, magnitude float64) []string {
	emotions := []string{}

	if score > 0.7 && magnitude > 1.5 {
		emotions = append(emotions, Joy)
	}
	if score > 0.5 && score <= 0.7 {
		emotions = append(emotions, Satisfaction)
	}
	if score > 0 && score <= 0.5 {
		emotions = append(emotions, Contentment)
	}
	if score >= -0.5 && score < 0 {
		emotions = append(emotions, Disappointment)
	}
	if score >= -0.7 && score < -0.5 {
		emotions = append(emotions, Frustration)
	}
	if score < -0.7 {
		emotions = append(emotions, Anger)
	}

	return emotions
}
