package analyzer

import (
	"strings"

	"github.com/ibeckermayer/tastemap/internal/types"
)

// AspectScores holds one optional score per aspect. A nil score means no
// sentence mentioned the aspect.
type AspectScores map[Aspect]*float64

// ScoreAspects matches each sentence against every aspect's keywords.
// The first matching sentence sets the aspect's score; each later match
// replaces it with the mean of the previous value and the new sentence
// score. This running pairwise average weights later sentences more
// heavily and depends on sentence order.
func (l *Lexicon) ScoreAspects(sentences []types.Sentence) AspectScores {
	scores := make(AspectScores, len(Aspects))
	for _, a := range Aspects {
		scores[a] = nil
	}

	for _, s := range sentences {
		text := strings.ToLower(s.Text)
		for _, a := range Aspects {
			if !containsAny(text, l.aspects[a]) {
				continue
			}
			v := s.Score
			if prev := scores[a]; prev != nil {
				v = (*prev + v) / 2
			}
			scores[a] = &v
		}
	}

	return scores
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
